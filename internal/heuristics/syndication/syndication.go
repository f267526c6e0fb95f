// Package syndication determines whether a content item is a syndicated
// copy of reporting published elsewhere. Five weighted signals feed the
// verdict: canonical-URL mismatch, known wire networks, content patterns,
// domain reputation, and a stateful duplicate fingerprint check.
package syndication

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"

	"mediacontacts/internal/domain"
	"mediacontacts/internal/ports"
)

// Signal weights and thresholds, kept in one place for tuning.
const (
	weightCanonical  = 0.4
	weightNetwork    = 0.3
	weightPatterns   = 0.2
	weightReputation = 0.1
	weightDuplicate  = 0.3

	verdictThreshold = 0.5

	canonicalWireConfidence  = 0.95
	canonicalOtherConfidence = 0.8
	duplicateConfidence      = 0.9
	heavyDomainConfidence    = 0.8
	prefixDomainConfidence   = 0.6
	patternsFlagThreshold    = 0.3

	primarySourceConfidence  = 0.9
	fallbackSourceConfidence = 0.6

	// DefaultFilterThreshold is the confidence above which syndicated items
	// are dropped by FilterSyndicatedContent.
	DefaultFilterThreshold = 0.7
)

const (
	networkPatternScore   = 0.3
	networkIndicatorScore = 0.4
	networkDomainScore    = 0.5
)

type network struct {
	name             string
	patterns         []*regexp.Regexp
	indicators       []string
	canonicalDomains []string
}

func defaultNetworks() []network {
	return []network{
		{
			name:             "Associated Press",
			patterns:         []*regexp.Regexp{regexp.MustCompile(`(?i)\(ap\)`), regexp.MustCompile(`(?i)\bassociated press\b`)},
			indicators:       []string{"ap news", "ap photo", "the associated press"},
			canonicalDomains: []string{"apnews.com", "ap.org"},
		},
		{
			name:             "Reuters",
			patterns:         []*regexp.Regexp{regexp.MustCompile(`(?i)\(reuters\)`), regexp.MustCompile(`(?i)\breuters\b`)},
			indicators:       []string{"thomson reuters"},
			canonicalDomains: []string{"reuters.com"},
		},
		{
			name:             "Bloomberg",
			patterns:         []*regexp.Regexp{regexp.MustCompile(`(?i)\bbloomberg (news|wire)\b`)},
			indicators:       []string{"bloomberg news"},
			canonicalDomains: []string{"bloomberg.com"},
		},
		{
			name:             "Tribune Content Agency",
			patterns:         []*regexp.Regexp{regexp.MustCompile(`(?i)\btribune (news service|content agency)\b`)},
			indicators:       []string{"tribune content agency", "tns"},
			canonicalDomains: []string{"tribunecontentagency.com"},
		},
		{
			name:             "Gannett",
			patterns:         []*regexp.Regexp{regexp.MustCompile(`(?i)\busa today network\b`)},
			indicators:       []string{"gannett"},
			canonicalDomains: []string{"usatoday.com"},
		},
		{
			name:             "McClatchy",
			patterns:         []*regexp.Regexp{regexp.MustCompile(`(?i)\bmcclatchy\b`)},
			indicators:       []string{"mcclatchy washington bureau"},
			canonicalDomains: []string{"mcclatchydc.com"},
		},
		{
			name:             "Hearst",
			patterns:         []*regexp.Regexp{regexp.MustCompile(`(?i)\bhearst (newspapers|connecticut media)\b`)},
			indicators:       []string{"hearst newspapers"},
			canonicalDomains: []string{"hearst.com"},
		},
	}
}

var syndicationHeavyDomains = map[string]struct{}{
	"news.yahoo.com":   {},
	"msn.com":          {},
	"aol.com":          {},
	"flipboard.com":    {},
	"smartnews.com":    {},
	"newsbreak.com":    {},
	"news.google.com":  {},
	"drudgereport.com": {},
}

var syndicationPrefixes = []string{"news.", "wire.", "syndicated.", "ap.", "reuters."}

var primarySourceDomains = map[string]struct{}{
	"apnews.com":         {},
	"reuters.com":        {},
	"nytimes.com":        {},
	"washingtonpost.com": {},
	"wsj.com":            {},
	"bloomberg.com":      {},
}

var (
	bylineMarkerExprs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\((ap|reuters)\)`),
		regexp.MustCompile(`(?i)\bwire (report|story)\b`),
		regexp.MustCompile(`(?i)\bstaff and wire reports\b`),
	}
	republicationExprs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)originally published`),
		regexp.MustCompile(`(?i)this (story|article) (was )?first appeared`),
		regexp.MustCompile(`(?i)republished (with|from)`),
		regexp.MustCompile(`(?i)reprinted with permission`),
	}
	copyrightExprs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)copyright \d{4} (the )?associated press`),
		regexp.MustCompile(`(?i)© \d{4} (reuters|bloomberg|the associated press)`),
	}
	urlPathExprs = []*regexp.Regexp{
		regexp.MustCompile(`/wire/`),
		regexp.MustCompile(`/syndicated/`),
		regexp.MustCompile(`/partner/`),
	}
)

const (
	patternBylineWeight        = 0.4
	patternRepublicationWeight = 0.3
	patternCopyrightWeight     = 0.5
	patternURLWeight           = 0.3
)

type signal struct {
	detected   bool
	confidence float64
}

// Detector evaluates content items. The fingerprint store makes duplicate
// detection stateful: within a batch, an item can only be flagged as a
// duplicate of items analyzed before it.
type Detector struct {
	store    ports.FingerprintStore
	networks []network
	logger   *slog.Logger
}

var _ ports.SyndicationDetector = (*Detector)(nil)

// New wires a fingerprint store; a nil store gets an unbounded in-memory one.
func New(store ports.FingerprintStore, logger *slog.Logger) *Detector {
	if store == nil {
		store = NewMemoryStore(0)
	}
	return &Detector{store: store, networks: defaultNetworks(), logger: logger}
}

// AnalyzeSyndication evaluates one content item. The verdict score is the
// weighted sum of the detected signals' contributions, so a weak signal on
// its own never carries a verdict: circumstantial evidence (wire markers,
// a republication-heavy host) must corroborate before the threshold is
// crossed. Canonical and duplicate evidence is direct and forces the
// verdict regardless of the sum.
func (d *Detector) AnalyzeSyndication(content domain.Content) domain.SyndicationAnalysis {
	analysis := domain.SyndicationAnalysis{URL: content.URL}

	canonical, canonicalDomain := d.checkCanonical(content)
	netSignal, networkName := d.detectNetwork(content)
	patterns := scanContentPatterns(content)
	reputation := checkDomainReputation(content.Domain)
	duplicate := d.checkDuplicates(content, &analysis)

	var score float64
	add := func(w float64, s signal) {
		if s.detected {
			score += w * s.confidence
		}
	}
	add(weightCanonical, canonical)
	add(weightNetwork, netSignal)
	add(weightPatterns, patterns)
	add(weightReputation, reputation)
	add(weightDuplicate, duplicate)

	analysis.IsSyndicated = score > verdictThreshold
	analysis.Confidence = clamp(score)

	// A canonical mismatch is authoritative: the publisher itself declares
	// the content lives elsewhere. A recorded duplicate is an observed
	// earlier copy. Either forces the verdict, with confidence floored at
	// the signal's own strength so weaker co-occurring signals cannot
	// dilute it.
	if canonical.detected {
		analysis.IsSyndicated = true
		if canonical.confidence > analysis.Confidence {
			analysis.Confidence = canonical.confidence
		}
	}
	if duplicate.detected {
		analysis.IsSyndicated = true
		if duplicate.confidence > analysis.Confidence {
			analysis.Confidence = duplicate.confidence
		}
	}

	if canonical.detected {
		analysis.CanonicalURL = resolveCanonical(content)
		analysis.Reasoning = append(analysis.Reasoning,
			fmt.Sprintf("canonical URL points at %s, not %s", canonicalDomain, content.Domain))
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:       domain.RecommendUseOriginal,
			Priority:   domain.PriorityHigh,
			Action:     fmt.Sprintf("import the original from %s instead", canonicalDomain),
			Confidence: canonical.confidence,
		})
	}
	if netSignal.detected {
		analysis.SyndicationNetwork = networkName
		analysis.Reasoning = append(analysis.Reasoning,
			fmt.Sprintf("matches known wire service %s", networkName))
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:       domain.RecommendSkipDuplicate,
			Priority:   domain.PriorityHigh,
			Action:     fmt.Sprintf("skip wire copy distributed by %s", networkName),
			Confidence: netSignal.confidence,
		})
	}
	if patterns.detected {
		analysis.Reasoning = append(analysis.Reasoning, "body carries syndication markers")
	}
	if reputation.detected {
		analysis.Reasoning = append(analysis.Reasoning,
			fmt.Sprintf("%s republishes heavily", content.Domain))
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:       domain.RecommendVerifyAuthor,
			Priority:   domain.PriorityMedium,
			Action:     "verify the byline belongs to this outlet's staff",
			Confidence: reputation.confidence,
		})
	}
	if duplicate.detected {
		analysis.Reasoning = append(analysis.Reasoning,
			fmt.Sprintf("%d earlier copies share this title and byline", len(analysis.DuplicateURLs)))
		action := "skip; the same story was already analyzed"
		if analysis.OriginalSource != nil {
			action = fmt.Sprintf("skip; original appears to be %s", analysis.OriginalSource.Domain)
		}
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:       domain.RecommendSkipDuplicate,
			Priority:   domain.PriorityHigh,
			Action:     action,
			Confidence: duplicate.confidence,
		})
	}
	if analysis.IsSyndicated {
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:       domain.RecommendCheckCanonical,
			Priority:   domain.PriorityLow,
			Action:     "confirm the canonical URL before importing the byline author",
			Confidence: analysis.Confidence,
		})
	}

	return analysis
}

// checkCanonical flags content whose declared canonical URL lives on a
// different registrable domain.
func (d *Detector) checkCanonical(content domain.Content) (signal, string) {
	canonical := resolveCanonical(content)
	if canonical == "" {
		return signal{}, ""
	}

	canonicalDomain := registrableDomain(hostOf(canonical))
	contentDomain := registrableDomain(content.Domain)
	if canonicalDomain == "" || contentDomain == "" || canonicalDomain == contentDomain {
		return signal{}, ""
	}

	conf := canonicalOtherConfidence
	if d.isWireCanonicalDomain(canonicalDomain) {
		conf = canonicalWireConfidence
	}
	return signal{detected: true, confidence: conf}, canonicalDomain
}

func (d *Detector) isWireCanonicalDomain(dom string) bool {
	for _, n := range d.networks {
		for _, cd := range n.canonicalDomains {
			if dom == cd {
				return true
			}
		}
	}
	return false
}

func resolveCanonical(content domain.Content) string {
	if content.CanonicalURL != "" {
		return content.CanonicalURL
	}
	if v := content.MetaTags["canonical"]; v != "" {
		return v
	}
	return content.MetaTags["og:url"]
}

// detectNetwork scores each known wire service and keeps the best match.
func (d *Detector) detectNetwork(content domain.Content) (signal, string) {
	text := strings.ToLower(content.Title + " " + content.Byline + " " + content.Body)
	contentDomain := registrableDomain(content.Domain)

	var bestScore float64
	var bestName string
	for _, n := range d.networks {
		score := 0.0
		for _, p := range n.patterns {
			if p.MatchString(text) {
				score += networkPatternScore
			}
		}
		for _, ind := range n.indicators {
			if strings.Contains(text, ind) {
				score += networkIndicatorScore
			}
		}
		for _, cd := range n.canonicalDomains {
			if contentDomain == cd {
				score += networkDomainScore
			}
		}
		if score > bestScore {
			bestScore = score
			bestName = n.name
		}
	}

	if bestScore == 0 {
		return signal{}, ""
	}
	return signal{detected: true, confidence: clamp(bestScore)}, bestName
}

// scanContentPatterns looks for byline markers, republication phrases,
// copyright lines, and telltale URL path segments.
func scanContentPatterns(content domain.Content) signal {
	text := content.Title + "\n" + content.Byline + "\n" + content.Body

	score := 0.0
	if anyMatch(bylineMarkerExprs, text) {
		score += patternBylineWeight
	}
	if anyMatch(republicationExprs, text) {
		score += patternRepublicationWeight
	}
	if anyMatch(copyrightExprs, text) {
		score += patternCopyrightWeight
	}
	if anyMatch(urlPathExprs, content.URL) {
		score += patternURLWeight
	}
	score = clamp(score)

	return signal{detected: score > patternsFlagThreshold, confidence: score}
}

func anyMatch(exprs []*regexp.Regexp, text string) bool {
	for _, e := range exprs {
		if e.MatchString(text) {
			return true
		}
	}
	return false
}

// checkDomainReputation flags domains known to republish wire content.
// A clean domain is reported undetected so it never feeds the verdict.
func checkDomainReputation(dom string) signal {
	dom = strings.ToLower(strings.TrimPrefix(dom, "www."))
	if _, ok := syndicationHeavyDomains[dom]; ok {
		return signal{detected: true, confidence: heavyDomainConfidence}
	}
	for _, prefix := range syndicationPrefixes {
		if strings.HasPrefix(dom, prefix) {
			return signal{detected: true, confidence: prefixDomainConfidence}
		}
	}
	return signal{detected: false, confidence: 0.7}
}

// checkDuplicates consults and updates the fingerprint store. Only earlier
// items can be reported as duplicates of the current one, never later ones.
func (d *Detector) checkDuplicates(content domain.Content, analysis *domain.SyndicationAnalysis) signal {
	key := fingerprintKey(content)
	entry := domain.FingerprintEntry{
		URL:         content.URL,
		Domain:      content.Domain,
		PublishedAt: content.PublishedAt,
	}

	fp, ok := d.store.Get(key)
	if !ok {
		fp = domain.Fingerprint{
			TitleHash:   hash32(normalizeTitle(content.Title)),
			ContentHash: hash32(contentPrefix(content.Body)),
			AuthorHash:  hash32(authorFromByline(content.Byline)),
			Earliest:    content.PublishedAt,
			Latest:      content.PublishedAt,
			Entries:     []domain.FingerprintEntry{entry},
		}
		d.store.Put(key, fp)
		return signal{}
	}

	analysis.DuplicateURLs = fp.URLs()

	fp.Entries = append(fp.Entries, entry)
	if !content.PublishedAt.IsZero() {
		if fp.Earliest.IsZero() || content.PublishedAt.Before(fp.Earliest) {
			fp.Earliest = content.PublishedAt
		}
		if content.PublishedAt.After(fp.Latest) {
			fp.Latest = content.PublishedAt
		}
	}
	d.store.Put(key, fp)

	analysis.OriginalSource = determineOriginalSource(fp)
	return signal{detected: true, confidence: duplicateConfidence}
}

// determineOriginalSource prefers a known primary-source domain; otherwise it
// picks the earliest-dated entry, falling back to the first recorded when no
// entry carries a date.
func determineOriginalSource(fp domain.Fingerprint) *domain.SourceInfo {
	for _, e := range fp.Entries {
		if _, ok := primarySourceDomains[registrableDomain(e.Domain)]; ok {
			return &domain.SourceInfo{
				Domain:           e.Domain,
				Outlet:           outletName(e.Domain),
				PublishedAt:      e.PublishedAt,
				Confidence:       primarySourceConfidence,
				IsOriginalSource: true,
			}
		}
	}

	if len(fp.Entries) == 0 {
		return nil
	}
	best := fp.Entries[0]
	for _, e := range fp.Entries[1:] {
		if e.PublishedAt.IsZero() {
			continue
		}
		if best.PublishedAt.IsZero() || e.PublishedAt.Before(best.PublishedAt) {
			best = e
		}
	}
	return &domain.SourceInfo{
		Domain:      best.Domain,
		Outlet:      outletName(best.Domain),
		PublishedAt: best.PublishedAt,
		Confidence:  fallbackSourceConfidence,
	}
}

// BatchAnalyzeSyndication analyzes items strictly in order; later items can
// be flagged as duplicates of earlier ones through the shared store.
func (d *Detector) BatchAnalyzeSyndication(contents []domain.Content) []domain.SyndicationAnalysis {
	analyses := make([]domain.SyndicationAnalysis, 0, len(contents))
	for _, c := range contents {
		analyses = append(analyses, d.AnalyzeSyndication(c))
	}
	if d.logger != nil {
		d.logger.Debug("batch syndication done", "items", len(contents), "fingerprints", d.store.Len())
	}
	return analyses
}

// FilterSyndicatedContent keeps items that are original or whose syndication
// confidence falls below threshold.
func FilterSyndicatedContent(analyses []domain.SyndicationAnalysis, threshold float64) []domain.SyndicationAnalysis {
	kept := make([]domain.SyndicationAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if !a.IsSyndicated || a.Confidence < threshold {
			kept = append(kept, a)
		}
	}
	return kept
}

// GetOriginalSources collects distinct presumed originals across a batch.
func GetOriginalSources(analyses []domain.SyndicationAnalysis) []domain.SourceInfo {
	seen := map[string]struct{}{}
	var sources []domain.SourceInfo
	for _, a := range analyses {
		if a.OriginalSource == nil {
			continue
		}
		if _, ok := seen[a.OriginalSource.Domain]; ok {
			continue
		}
		seen[a.OriginalSource.Domain] = struct{}{}
		sources = append(sources, *a.OriginalSource)
	}
	return sources
}

// ClearFingerprints resets duplicate detection, bounding memory between
// batches.
func (d *Detector) ClearFingerprints() {
	d.store.Clear()
}

// DomainCount pairs a domain with its duplicate-group membership count.
type DomainCount struct {
	Domain string
	Count  int
}

// Stats summarizes the detector's fingerprint state.
type Stats struct {
	TotalFingerprints int
	DuplicateGroups   int
	TopDomains        []DomainCount
}

// GetSyndicationStats reports fingerprint totals and the ten domains that
// appear in the most duplicate groups.
func (d *Detector) GetSyndicationStats() Stats {
	stats := Stats{TotalFingerprints: d.store.Len()}

	counts := map[string]int{}
	d.store.Range(func(_ string, fp domain.Fingerprint) bool {
		if len(fp.Entries) < 2 {
			return true
		}
		stats.DuplicateGroups++
		seen := map[string]struct{}{}
		for _, e := range fp.Entries {
			if _, ok := seen[e.Domain]; ok {
				continue
			}
			seen[e.Domain] = struct{}{}
			counts[e.Domain]++
		}
		return true
	})

	for dom, c := range counts {
		stats.TopDomains = append(stats.TopDomains, DomainCount{Domain: dom, Count: c})
	}
	sort.Slice(stats.TopDomains, func(i, j int) bool {
		if stats.TopDomains[i].Count != stats.TopDomains[j].Count {
			return stats.TopDomains[i].Count > stats.TopDomains[j].Count
		}
		return stats.TopDomains[i].Domain < stats.TopDomains[j].Domain
	})
	if len(stats.TopDomains) > 10 {
		stats.TopDomains = stats.TopDomains[:10]
	}

	return stats
}

// fingerprintKey derives the dedup key from the title and byline author.
func fingerprintKey(content domain.Content) string {
	return hash32(normalizeTitle(content.Title)) + ":" + hash32(authorFromByline(content.Byline))
}

// hash32 is a 32-bit rolling hash; stable, cheap, collision-tolerant for
// dedup grouping.
func hash32(s string) string {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return fmt.Sprintf("%08x", h)
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

func contentPrefix(body string) string {
	if len(body) > 500 {
		body = body[:500]
	}
	return body
}

// authorFromByline strips the "By " prefix and trailing co-authors.
func authorFromByline(byline string) string {
	author := strings.ToLower(strings.TrimSpace(byline))
	author = strings.TrimPrefix(author, "by ")
	if i := strings.IndexAny(author, ",;|"); i >= 0 {
		author = author[:i]
	}
	if i := strings.Index(author, " and "); i >= 0 {
		author = author[:i]
	}
	return strings.TrimSpace(author)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Hostname()
}

// registrableDomain reduces a host to its eTLD+1 so subdomain variants
// compare equal; unparseable hosts fall back to a www-stripped form.
func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return strings.TrimPrefix(host, "www.")
}

func outletName(dom string) string {
	dom = strings.TrimPrefix(strings.ToLower(dom), "www.")
	if i := strings.Index(dom, "."); i > 0 {
		dom = dom[:i]
	}
	if dom == "" {
		return ""
	}
	return strings.ToUpper(dom[:1]) + dom[1:]
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
