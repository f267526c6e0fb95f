package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediacontacts/internal/domain"
	"mediacontacts/internal/ports"
)

// PipelineDeps wires all driven adapters into the import pipeline.
type PipelineDeps struct {
	Source     ports.CandidateSource
	Analyzer   ports.ContactAnalyzer
	Repository ports.ContactRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// PipelineConfig carries the per-run tuning knobs.
type PipelineConfig struct {
	Query           domain.DiscoveryQuery
	MinContactScore float64
	SkipThreshold   float64
}

// Pipeline implements the contact-import workflow: fetch candidates,
// drop syndicated content, analyze contacts, persist the ones worth
// keeping and publish a digest.
type Pipeline struct {
	source     ports.CandidateSource
	analyzer   ports.ContactAnalyzer
	repository ports.ContactRepository
	notifier   ports.Notifier
	config     PipelineConfig
	logger     *slog.Logger
}

// RunReport summarizes one import run.
type RunReport struct {
	BatchID           string
	Imported          []domain.ImportedContact
	SkippedDuplicates int
	SkippedSyndicated int
	SkippedLowScore   int
	Failures          int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps, config PipelineConfig) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:     deps.Source,
		analyzer:   deps.Analyzer,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		config:     config,
		logger:     logger,
	}
}

// ProcessRun executes one full import cycle. Per-item analysis failures are
// reported in the digest rather than aborting the run; only infrastructure
// errors (discovery, storage) are fatal.
func (p *Pipeline) ProcessRun(ctx context.Context, trigger time.Time) (RunReport, error) {
	report := RunReport{BatchID: uuid.NewString()}
	if p.source == nil || p.analyzer == nil {
		return report, nil
	}

	candidates, err := p.source.FetchCandidates(ctx, p.config.Query)
	if err != nil {
		return report, fmt.Errorf("fetch candidates: %w", err)
	}
	p.logger.Info("candidates fetched",
		"batch", report.BatchID,
		"contacts", len(candidates.Contacts),
		"content", len(candidates.Content))

	contacts, skippedDup, err := p.filterImported(ctx, candidates.Contacts)
	if err != nil {
		return report, err
	}
	report.SkippedDuplicates = skippedDup

	contentBatch := p.analyzer.BatchAnalyzeContent(ctx, candidates.Content)
	report.SkippedSyndicated = countSkippable(contentBatch.Syndicated, p.config.SkipThreshold)
	report.Failures += len(contentBatch.Failures)
	for _, f := range contentBatch.Failures {
		p.logger.Warn("content analysis failed", "batch", report.BatchID, "id", f.ID, "error", f.Err)
	}

	contactBatch := p.analyzer.BatchAnalyzeContacts(ctx, contacts)
	report.Failures += len(contactBatch.Failures)
	for _, f := range contactBatch.Failures {
		p.logger.Warn("contact analysis failed", "batch", report.BatchID, "id", f.ID, "error", f.Err)
	}

	for _, analysis := range contactBatch.Analyses {
		if analysis == nil {
			continue
		}

		record := domain.ImportedContact{
			Contact:    analysis.Contact,
			Analysis:   *analysis,
			Status:     domain.ImportAccepted,
			BatchID:    report.BatchID,
			ImportedAt: trigger,
		}

		if analysis.OverallScore < p.config.MinContactScore {
			// Rejections are persisted too, so later runs dedup them
			// instead of re-fetching and re-analyzing the same contact.
			record.Status = domain.ImportRejected
			report.SkippedLowScore++
			p.logger.Debug("contact below score cutoff",
				"batch", report.BatchID,
				"contact", analysis.Contact.ID,
				"score", analysis.OverallScore)
			if p.repository != nil {
				if err := p.repository.SaveContact(ctx, record); err != nil {
					return report, fmt.Errorf("persist contact %s: %w", analysis.Contact.ID, err)
				}
			}
			continue
		}

		if p.repository != nil {
			if err := p.repository.SaveContact(ctx, record); err != nil {
				return report, fmt.Errorf("persist contact %s: %w", analysis.Contact.ID, err)
			}
		}
		report.Imported = append(report.Imported, record)
	}

	p.logger.Info("import run complete",
		"batch", report.BatchID,
		"imported", len(report.Imported),
		"skipped_duplicates", report.SkippedDuplicates,
		"skipped_syndicated", report.SkippedSyndicated,
		"skipped_low_score", report.SkippedLowScore,
		"failures", report.Failures)

	if p.notifier != nil {
		digest := buildImportDigest(report)
		if err := p.notifier.PublishDigest(ctx, digest); err != nil {
			p.logger.Warn("digest publish failed", "batch", report.BatchID, "error", err)
		}
	}

	return report, nil
}

// filterImported drops contacts already present in storage.
func (p *Pipeline) filterImported(ctx context.Context, contacts []domain.Contact) ([]domain.Contact, int, error) {
	if p.repository == nil || len(contacts) == 0 {
		return contacts, 0, nil
	}

	ids := make([]string, 0, len(contacts))
	for _, c := range contacts {
		if c.ID != "" {
			ids = append(ids, c.ID)
		}
	}

	known, err := p.repository.AlreadyImported(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("load imported: %w", err)
	}

	fresh := make([]domain.Contact, 0, len(contacts))
	skipped := 0
	for _, c := range contacts {
		if known[c.ID] {
			skipped++
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh, skipped, nil
}

func countSkippable(analyses []*domain.ContentAnalysis, threshold float64) int {
	count := 0
	for _, a := range analyses {
		if a == nil {
			continue
		}
		if a.ShouldSkip || a.Syndication.Confidence > threshold {
			count++
		}
	}
	return count
}

// buildImportDigest renders one run as a Markdown summary, grouping
// imported contacts by primary beat.
func buildImportDigest(report RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Media contacts import* `%s`\n", report.BatchID)
	fmt.Fprintf(&b, "Imported: %d | Duplicates: %d | Syndicated: %d | Below score: %d | Failures: %d\n",
		len(report.Imported),
		report.SkippedDuplicates,
		report.SkippedSyndicated,
		report.SkippedLowScore,
		report.Failures)

	if len(report.Imported) == 0 {
		return b.String()
	}

	byBeat := make(map[string][]domain.ImportedContact)
	for _, rec := range report.Imported {
		beat := rec.Analysis.Beat.PrimaryBeat
		if beat == "" {
			beat = "general"
		}
		byBeat[beat] = append(byBeat[beat], rec)
	}

	beats := make([]string, 0, len(byBeat))
	for beat := range byBeat {
		beats = append(beats, beat)
	}
	sort.Strings(beats)

	for _, beat := range beats {
		fmt.Fprintf(&b, "\n*%s*\n", beat)
		recs := byBeat[beat]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Analysis.OverallScore > recs[j].Analysis.OverallScore
		})
		for _, rec := range recs {
			name := rec.Contact.Name
			if name == "" {
				name = rec.Contact.Email
			}
			fmt.Fprintf(&b, "- %s (%.2f)\n", name, rec.Analysis.OverallScore)
		}
	}

	return b.String()
}
