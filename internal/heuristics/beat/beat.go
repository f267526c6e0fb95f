// Package beat assigns topical coverage areas from URL sections, titles,
// and body text.
package beat

import (
	"net/url"
	"sort"
	"strings"

	"mediacontacts/internal/domain"
	"mediacontacts/internal/ports"
)

const (
	sectionConfidence  = 0.9
	keywordBase        = 0.3
	keywordStep        = 0.1
	keywordCap         = 0.8
	secondaryThreshold = 0.3
	titleWeight        = 2
)

// Analyzer classifies beats using a section map and per-beat keyword tables.
type Analyzer struct {
	sections map[string]string
	keywords map[string][]string
}

var _ ports.BeatAnalyzer = (*Analyzer)(nil)

// DefaultSections maps URL path segments to beats.
func DefaultSections() map[string]string {
	return map[string]string{
		"technology":    "technology",
		"tech":          "technology",
		"politics":      "politics",
		"election":      "politics",
		"business":      "business",
		"economy":       "business",
		"markets":       "business",
		"health":        "health",
		"science":       "science",
		"climate":       "climate",
		"environment":   "climate",
		"sports":        "sports",
		"sport":         "sports",
		"culture":       "culture",
		"arts":          "culture",
		"entertainment": "culture",
	}
}

// DefaultKeywords holds per-beat keyword tables matched against title and body.
func DefaultKeywords() map[string][]string {
	return map[string][]string{
		"technology": {"software", "startup", "artificial intelligence", "chip", "silicon valley", "cybersecurity", "app", "algorithm"},
		"politics":   {"senate", "congress", "election", "legislation", "white house", "campaign", "parliament", "governor"},
		"business":   {"earnings", "merger", "acquisition", "stock", "revenue", "ipo", "investor", "quarterly"},
		"health":     {"hospital", "vaccine", "disease", "patient", "clinical", "fda", "public health", "outbreak"},
		"science":    {"researchers", "study finds", "experiment", "nasa", "physics", "genome", "peer-reviewed"},
		"climate":    {"emissions", "warming", "renewable", "carbon", "wildfire", "drought", "climate change"},
		"sports":     {"season", "playoff", "championship", "coach", "league", "tournament", "roster"},
		"culture":    {"film", "album", "museum", "festival", "premiere", "novel", "exhibition"},
	}
}

// New builds an analyzer with the built-in tables.
func New() *Analyzer {
	return NewWithTables(nil, nil)
}

// NewWithTables accepts externally loaded tables; nil or empty maps fall back
// to the defaults.
func NewWithTables(sections map[string]string, keywords map[string][]string) *Analyzer {
	if len(sections) == 0 {
		sections = DefaultSections()
	}
	if len(keywords) == 0 {
		keywords = DefaultKeywords()
	}
	return &Analyzer{sections: sections, keywords: keywords}
}

// AnalyzeBeat classifies one piece of evidence. Section hits dominate;
// keyword hits fill in when the URL carries no section.
func (a *Analyzer) AnalyzeBeat(input domain.BeatInput) domain.BeatAnalysis {
	scores := map[string]float64{}
	var sources domain.BeatSources

	for _, segment := range pathSegments(input) {
		if b, ok := a.sections[segment]; ok {
			if scores[b] < sectionConfidence {
				scores[b] = sectionConfidence
			}
			sources.SectionBased = append(sources.SectionBased, segment)
		}
	}

	title := strings.ToLower(input.Title)
	body := strings.ToLower(input.Body)
	for b, words := range a.keywords {
		hits := 0
		for _, w := range words {
			if strings.Contains(title, w) {
				hits += titleWeight
			}
			if strings.Contains(body, w) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		conf := keywordBase + keywordStep*float64(hits)
		if conf > keywordCap {
			conf = keywordCap
		}
		if conf > scores[b] {
			scores[b] = conf
		}
		sources.KeywordBased = append(sources.KeywordBased, b)
	}
	sort.Strings(sources.KeywordBased)

	return buildAnalysis(scores, sources)
}

func buildAnalysis(scores map[string]float64, sources domain.BeatSources) domain.BeatAnalysis {
	if len(scores) == 0 {
		return domain.BeatAnalysis{PrimaryBeat: "general", Confidence: 0.2}
	}

	type scored struct {
		beat  string
		score float64
	}
	ranked := make([]scored, 0, len(scores))
	for b, s := range scores {
		ranked = append(ranked, scored{beat: b, score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].beat < ranked[j].beat
	})

	analysis := domain.BeatAnalysis{
		PrimaryBeat: ranked[0].beat,
		Confidence:  clamp(ranked[0].score),
		Sources:     sources,
	}
	for _, r := range ranked[1:] {
		if r.score >= secondaryThreshold {
			analysis.SecondaryBeats = append(analysis.SecondaryBeats, r.beat)
		}
	}
	return analysis
}

// MergeBeatAnalyses folds per-byline analyses into one profile. Entries are
// expected oldest-first; later entries carry more weight.
func (a *Analyzer) MergeBeatAnalyses(analyses []domain.BeatAnalysis) domain.BeatAnalysis {
	if len(analyses) == 0 {
		return domain.BeatAnalysis{PrimaryBeat: "general", Confidence: 0.2}
	}
	if len(analyses) == 1 {
		return analyses[0]
	}

	votes := map[string]float64{}
	var sources domain.BeatSources
	var confSum, weightSum float64

	for i, an := range analyses {
		w := float64(i+1) / float64(len(analyses))
		weightSum += w
		confSum += an.Confidence * w

		if an.PrimaryBeat != "" && an.PrimaryBeat != "general" {
			votes[an.PrimaryBeat] += an.Confidence * w
		}
		for _, b := range an.SecondaryBeats {
			votes[b] += 0.5 * an.Confidence * w
		}
		sources.SectionBased = appendUnique(sources.SectionBased, an.Sources.SectionBased)
		sources.KeywordBased = appendUnique(sources.KeywordBased, an.Sources.KeywordBased)
	}

	merged := buildAnalysis(votes, sources)
	merged.Confidence = clamp(confSum / weightSum)
	return merged
}

func pathSegments(input domain.BeatInput) []string {
	raw := input.SectionPath
	if raw == "" && input.URL != "" {
		if u, err := url.Parse(input.URL); err == nil {
			raw = u.Path
		}
	}

	var segments []string
	for _, s := range strings.Split(strings.ToLower(raw), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		found := false
		for _, d := range dst {
			if d == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
