// Package heuristics composes the email, beat, freelancer, and syndication
// analyzers into per-contact and per-content analyses with prioritized
// recommendations and an aggregate quality score.
package heuristics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mediacontacts/internal/domain"
	"mediacontacts/internal/ports"
)

const analysisVersion = "1.3.0"

// Overall-score weights. Renormalized when no freelancer profile exists.
const (
	weightBeat       = 0.30
	weightEmail      = 0.25
	weightFreelancer = 0.20
	weightRecency    = 0.25

	lowBeatConfidence   = 0.6
	recencyActive       = 0.8
	recencyStale        = 0.3
	recencyDefault      = 0.6
	contentSkipOverride = 0.7

	defaultBatchWorkers = 8
)

// Deps wires the four analyzer ports into the orchestrator.
type Deps struct {
	Beats       ports.BeatAnalyzer
	Emails      ports.EmailAnalyzer
	Freelancers ports.FreelancerAnalyzer
	Syndication ports.SyndicationDetector
	Logger      *slog.Logger
}

// MediaHeuristics fans a contact or content record out to the analyzers and
// folds their outputs into one result.
type MediaHeuristics struct {
	beats       ports.BeatAnalyzer
	emails      ports.EmailAnalyzer
	freelancers ports.FreelancerAnalyzer
	syndication ports.SyndicationDetector
	logger      *slog.Logger
	workers     int
}

var _ ports.ContactAnalyzer = (*MediaHeuristics)(nil)

// New constructs the orchestrator from injected analyzers.
func New(deps Deps) *MediaHeuristics {
	return &MediaHeuristics{
		beats:       deps.Beats,
		emails:      deps.Emails,
		freelancers: deps.Freelancers,
		syndication: deps.Syndication,
		logger:      deps.Logger,
		workers:     defaultBatchWorkers,
	}
}

// AnalyzeContact produces the aggregate per-contact analysis.
func (m *MediaHeuristics) AnalyzeContact(contact domain.Contact) domain.ContactAnalysis {
	started := time.Now()

	analysis := domain.ContactAnalysis{
		Contact: contact,
		Beat:    m.analyzeContactBeats(contact),
		Email:   m.emails.AnalyzeEmail(contact.Email, "", domain.EmailHint{ContactName: contact.Name, Title: contact.Title}),
	}

	if len(contact.Outlets) > 0 {
		profile := m.freelancers.AnalyzeFreelancer(domain.FreelancerInput{
			Name:    contact.Name,
			Bio:     contact.Bio,
			Outlets: contact.Outlets,
		})
		analysis.Freelancer = &profile
	}

	m.generateRecommendations(&analysis)
	analysis.OverallScore = m.overallScore(analysis)
	analysis.Metadata = domain.AnalysisMetadata{
		ID:             uuid.NewString(),
		Version:        analysisVersion,
		Timestamp:      started,
		ProcessingTime: time.Since(started),
	}

	return analysis
}

// analyzeContactBeats merges per-byline beat analyses; contacts without
// bylines fall back to title and bio evidence.
func (m *MediaHeuristics) analyzeContactBeats(contact domain.Contact) domain.BeatAnalysis {
	var inputs []domain.BeatInput
	for _, outlet := range contact.Outlets {
		for _, b := range outlet.Bylines {
			inputs = append(inputs, domain.BeatInput{
				URL:         b.URL,
				SectionPath: b.SectionPath,
				Title:       b.Title,
				Body:        b.Excerpt,
				PublishedAt: b.PublishedAt,
			})
		}
	}

	if len(inputs) == 0 {
		return m.beats.AnalyzeBeat(domain.BeatInput{Title: contact.Title, Body: contact.Bio})
	}

	// Oldest first so the merge weights recent work higher.
	sort.SliceStable(inputs, func(i, j int) bool {
		return inputs[i].PublishedAt.Before(inputs[j].PublishedAt)
	})

	analyses := make([]domain.BeatAnalysis, 0, len(inputs))
	for _, in := range inputs {
		analyses = append(analyses, m.beats.AnalyzeBeat(in))
	}
	return m.beats.MergeBeatAnalyses(analyses)
}

// generateRecommendations is a pure function of the collected sub-analyses.
func (m *MediaHeuristics) generateRecommendations(analysis *domain.ContactAnalysis) {
	if analysis.Beat.Confidence < lowBeatConfidence {
		analysis.Warnings = append(analysis.Warnings,
			fmt.Sprintf("beat assignment %q has low confidence", analysis.Beat.PrimaryBeat))
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:        domain.RecommendVerifyBeat,
			Priority:    domain.PriorityMedium,
			Title:       "Verify beat assignment",
			Description: "keyword evidence was thin; confirm the beat from recent work",
			Action:      "review the contact's latest bylines before assigning a beat",
			Confidence:  analysis.Beat.Confidence,
		})
	}
	if len(analysis.Beat.Sources.SectionBased) > 0 {
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:        domain.RecommendUseSectionBeats,
			Priority:    domain.PriorityHigh,
			Title:       "Use section-based beats",
			Description: "URL sections directly name the coverage area",
			Action:      "prefer the section-derived beats over keyword guesses",
			Confidence:  analysis.Beat.Confidence,
		})
	}

	switch {
	case analysis.Email.EmailType == domain.EmailAlias:
		analysis.Warnings = append(analysis.Warnings, "email is a shared alias inbox")
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:        domain.RecommendFindDirectContact,
			Priority:    domain.PriorityMedium,
			Title:       "Find a direct contact",
			Description: "alias inboxes are triaged by multiple people",
			Action:      "search for the contact's personal address before outreach",
			Confidence:  analysis.Email.Confidence,
		})
	case analysis.Email.EmailType == domain.EmailPersonal && analysis.Email.Priority == domain.PriorityHigh:
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:        domain.RecommendPrioritizeContact,
			Priority:    domain.PriorityHigh,
			Title:       "Prioritize this contact",
			Description: "verified personal address with high outreach value",
			Action:      "move this contact to the top of the outreach list",
			Confidence:  analysis.Email.Confidence,
		})
	}

	if profile := analysis.Freelancer; profile != nil {
		analysis.Warnings = append(analysis.Warnings, profile.Warnings...)
		rec := domain.Recommendation{
			Type:       domain.RecommendContactStrategy,
			Priority:   domain.PriorityMedium,
			Action:     profile.ContactStrategy,
			Confidence: profile.Confidence,
		}
		if profile.IsFreelancer {
			rec.Title = "Freelancer contact strategy"
			rec.Description = fmt.Sprintf("writes for %d outlets; primary is %s", len(profile.Outlets), profile.PrimaryOutlet)
		} else {
			rec.Title = "Staff writer contact strategy"
			rec.Description = fmt.Sprintf("staff writer at %s", profile.PrimaryOutlet)
		}
		analysis.Recommendations = append(analysis.Recommendations, rec)
	}
}

// overallScore blends the sub-analyses; weights renormalize when the
// freelancer profile is absent.
func (m *MediaHeuristics) overallScore(analysis domain.ContactAnalysis) float64 {
	emailComponent := m.emails.ScoreEmail(analysis.Email) / 100
	if emailComponent > 1 {
		emailComponent = 1
	}

	score := analysis.Beat.Confidence*weightBeat + emailComponent*weightEmail
	total := weightBeat + weightEmail

	recency := recencyDefault
	if analysis.Freelancer != nil {
		score += analysis.Freelancer.Confidence * weightFreelancer
		total += weightFreelancer
		if analysis.Freelancer.RecentActivity.ActiveOutlets > 0 {
			recency = recencyActive
		} else {
			recency = recencyStale
		}
	}
	score += recency * weightRecency
	total += weightRecency

	final := score / total
	if final > 1 {
		return 1
	}
	return final
}

// AnalyzeContent runs the beat and syndication analyzers independently over
// one content item.
func (m *MediaHeuristics) AnalyzeContent(content domain.Content) domain.ContentAnalysis {
	analysis := domain.ContentAnalysis{
		Content: content,
		Beat: m.beats.AnalyzeBeat(domain.BeatInput{
			URL:         content.URL,
			SectionPath: content.SectionPath,
			Title:       content.Title,
			Body:        content.Body,
			PublishedAt: content.PublishedAt,
		}),
		Syndication: m.syndication.AnalyzeSyndication(content),
	}

	analysis.Recommendations = append(analysis.Recommendations, analysis.Syndication.Recommendations...)
	if len(analysis.Beat.Sources.SectionBased) > 0 {
		analysis.Recommendations = append(analysis.Recommendations, domain.Recommendation{
			Type:        domain.RecommendUseSectionBeats,
			Priority:    domain.PriorityHigh,
			Title:       "Use section-based beats",
			Description: "URL sections directly name the coverage area",
			Action:      "assign beats from the URL section",
			Confidence:  analysis.Beat.Confidence,
		})
	}

	analysis.ShouldSkip = analysis.Syndication.IsSyndicated && analysis.Syndication.Confidence > contentSkipOverride
	return analysis
}

// BatchAnalyzeContacts analyzes contacts in parallel; items share no mutable
// state. Per-item panics become failures instead of sinking the batch.
func (m *MediaHeuristics) BatchAnalyzeContacts(ctx context.Context, contacts []domain.Contact) domain.ContactBatch {
	results := make([]*domain.ContactAnalysis, len(contacts))
	errs := make([]error, len(contacts))

	g := new(errgroup.Group)
	g.SetLimit(m.workers)
	for i := range contacts {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("analyze contact: %v", r)
				}
			}()
			analysis := m.AnalyzeContact(contacts[i])
			results[i] = &analysis
			return nil
		})
	}
	_ = g.Wait()

	var batch domain.ContactBatch
	for i := range contacts {
		if errs[i] != nil {
			batch.Failures = append(batch.Failures, domain.BatchFailure{
				Index: i,
				ID:    contacts[i].ID,
				Err:   errs[i],
			})
			continue
		}
		batch.Analyses = append(batch.Analyses, results[i])
	}

	m.crossReferenceAnalyses(batch.Analyses)

	if m.logger != nil {
		m.logger.Debug("contact batch done",
			"contacts", len(contacts),
			"analyzed", len(batch.Analyses),
			"failed", len(batch.Failures))
	}
	return batch
}

// crossReferenceAnalyses flags outlets covered by more than one analyzed
// contact. It mutates the analyses in place.
func (m *MediaHeuristics) crossReferenceAnalyses(analyses []*domain.ContactAnalysis) {
	byOutlet := map[string][]*domain.ContactAnalysis{}
	for _, a := range analyses {
		if a.Freelancer == nil {
			continue
		}
		for _, outlet := range a.Freelancer.Outlets {
			byOutlet[outlet.Name] = append(byOutlet[outlet.Name], a)
		}
	}

	for outlet, group := range byOutlet {
		if len(group) < 2 {
			continue
		}
		for _, a := range group {
			a.Recommendations = append(a.Recommendations, domain.Recommendation{
				Type:        domain.RecommendOutletOverlap,
				Priority:    domain.PriorityLow,
				Title:       "Multiple contacts at this outlet",
				Description: fmt.Sprintf("%d candidates in this batch write for %s", len(group), outlet),
				Action:      "deduplicate outreach to avoid pitching the same desk twice",
				Confidence:  1,
			})
		}
	}
}

// BatchAnalyzeContent analyzes items strictly in array order: the syndication
// detector's fingerprint state means an item can only be flagged as a
// duplicate of earlier items. Results partition into original vs syndicated.
func (m *MediaHeuristics) BatchAnalyzeContent(ctx context.Context, contents []domain.Content) domain.ContentBatch {
	var batch domain.ContentBatch
	for i := range contents {
		if err := ctx.Err(); err != nil {
			batch.Failures = append(batch.Failures, domain.BatchFailure{Index: i, ID: contents[i].URL, Err: err})
			continue
		}

		analysis, err := m.analyzeContentSafe(contents[i])
		if err != nil {
			batch.Failures = append(batch.Failures, domain.BatchFailure{Index: i, ID: contents[i].URL, Err: err})
			continue
		}
		if analysis.ShouldSkip {
			batch.Syndicated = append(batch.Syndicated, analysis)
		} else {
			batch.Original = append(batch.Original, analysis)
		}
	}

	if m.logger != nil {
		m.logger.Debug("content batch done",
			"items", len(contents),
			"original", len(batch.Original),
			"syndicated", len(batch.Syndicated),
			"failed", len(batch.Failures))
	}
	return batch
}

func (m *MediaHeuristics) analyzeContentSafe(content domain.Content) (analysis *domain.ContentAnalysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			analysis = nil
			err = fmt.Errorf("analyze content: %v", r)
		}
	}()
	a := m.AnalyzeContent(content)
	return &a, nil
}
