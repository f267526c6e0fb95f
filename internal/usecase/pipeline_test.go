package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mediacontacts/internal/domain"
)

type fakeSource struct {
	set domain.CandidateSet
	err error
}

func (f *fakeSource) FetchCandidates(ctx context.Context, query domain.DiscoveryQuery) (domain.CandidateSet, error) {
	return f.set, f.err
}

type fakeAnalyzer struct {
	contactBatch domain.ContactBatch
	contentBatch domain.ContentBatch
}

func (f *fakeAnalyzer) BatchAnalyzeContacts(ctx context.Context, contacts []domain.Contact) domain.ContactBatch {
	return f.contactBatch
}

func (f *fakeAnalyzer) BatchAnalyzeContent(ctx context.Context, contents []domain.Content) domain.ContentBatch {
	return f.contentBatch
}

type fakeRepository struct {
	imported map[string]bool
	saved    []domain.ImportedContact
	saveErr  error
}

func (f *fakeRepository) AlreadyImported(ctx context.Context, ids []string) (map[string]bool, error) {
	if f.imported == nil {
		return map[string]bool{}, nil
	}
	return f.imported, nil
}

func (f *fakeRepository) SaveContact(ctx context.Context, record domain.ImportedContact) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, record)
	return nil
}

type fakeNotifier struct {
	digests []string
	err     error
}

func (f *fakeNotifier) PublishDigest(ctx context.Context, digest string) error {
	f.digests = append(f.digests, digest)
	return f.err
}

func contactAnalysis(id string, beat string, score float64) *domain.ContactAnalysis {
	return &domain.ContactAnalysis{
		Contact:      domain.Contact{ID: id, Name: "Contact " + id, Email: id + "@example.com"},
		Beat:         domain.BeatAnalysis{PrimaryBeat: beat},
		OverallScore: score,
	}
}

func TestProcessRunFiltersAndPersists(t *testing.T) {
	source := &fakeSource{set: domain.CandidateSet{
		Contacts: []domain.Contact{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}},
		Content:  []domain.Content{{URL: "https://example.com/a"}},
	}}
	analyzer := &fakeAnalyzer{
		contactBatch: domain.ContactBatch{
			Analyses: []*domain.ContactAnalysis{
				contactAnalysis("c1", "technology", 0.8),
				contactAnalysis("c3", "business", 0.2),
			},
		},
		contentBatch: domain.ContentBatch{
			Syndicated: []*domain.ContentAnalysis{
				{ShouldSkip: true, Syndication: domain.SyndicationAnalysis{Confidence: 0.9}},
			},
		},
	}
	repo := &fakeRepository{imported: map[string]bool{"c2": true}}
	notifier := &fakeNotifier{}

	p := NewPipeline(
		PipelineDeps{Source: source, Analyzer: analyzer, Repository: repo, Notifier: notifier},
		PipelineConfig{MinContactScore: 0.4, SkipThreshold: 0.7},
	)

	trigger := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	report, err := p.ProcessRun(context.Background(), trigger)
	if err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}

	if report.BatchID == "" {
		t.Error("expected non-empty batch ID")
	}
	if report.SkippedDuplicates != 1 {
		t.Errorf("SkippedDuplicates = %d, want 1", report.SkippedDuplicates)
	}
	if report.SkippedSyndicated != 1 {
		t.Errorf("SkippedSyndicated = %d, want 1", report.SkippedSyndicated)
	}
	if report.SkippedLowScore != 1 {
		t.Errorf("SkippedLowScore = %d, want 1", report.SkippedLowScore)
	}
	if len(report.Imported) != 1 || report.Imported[0].Contact.ID != "c1" {
		t.Fatalf("Imported = %+v, want single c1", report.Imported)
	}
	if report.Imported[0].Status != domain.ImportAccepted {
		t.Errorf("Status = %q", report.Imported[0].Status)
	}
	if !report.Imported[0].ImportedAt.Equal(trigger) {
		t.Errorf("ImportedAt = %v, want trigger time", report.Imported[0].ImportedAt)
	}

	if len(repo.saved) != 2 {
		t.Fatalf("expected accepted and rejected records saved, got %d", len(repo.saved))
	}
	byID := map[string]domain.ImportedContact{}
	for _, rec := range repo.saved {
		if rec.BatchID != report.BatchID {
			t.Errorf("record %s carries batch %q, want %q", rec.Contact.ID, rec.BatchID, report.BatchID)
		}
		byID[rec.Contact.ID] = rec
	}
	if byID["c1"].Status != domain.ImportAccepted {
		t.Errorf("c1 status = %q, want accepted", byID["c1"].Status)
	}
	if byID["c3"].Status != domain.ImportRejected {
		t.Errorf("c3 status = %q, want rejected", byID["c3"].Status)
	}
	if len(notifier.digests) != 1 {
		t.Fatalf("digests = %d, want 1", len(notifier.digests))
	}
	if !strings.Contains(notifier.digests[0], "*technology*") {
		t.Errorf("digest missing beat group:\n%s", notifier.digests[0])
	}
}

func TestProcessRunSourceError(t *testing.T) {
	p := NewPipeline(
		PipelineDeps{Source: &fakeSource{err: errors.New("boom")}, Analyzer: &fakeAnalyzer{}},
		PipelineConfig{},
	)

	if _, err := p.ProcessRun(context.Background(), time.Now()); err == nil {
		t.Fatal("expected fetch error to be fatal")
	}
}

func TestProcessRunAnalysisFailuresNotFatal(t *testing.T) {
	source := &fakeSource{set: domain.CandidateSet{
		Contacts: []domain.Contact{{ID: "c1"}, {ID: "c2"}},
	}}
	analyzer := &fakeAnalyzer{
		contactBatch: domain.ContactBatch{
			Analyses: []*domain.ContactAnalysis{contactAnalysis("c1", "science", 0.9)},
			Failures: []domain.BatchFailure{{Index: 1, ID: "c2", Err: errors.New("panic: bad record")}},
		},
	}
	notifier := &fakeNotifier{}

	p := NewPipeline(
		PipelineDeps{Source: source, Analyzer: analyzer, Notifier: notifier},
		PipelineConfig{MinContactScore: 0.4},
	)

	report, err := p.ProcessRun(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("ProcessRun: %v", err)
	}
	if report.Failures != 1 {
		t.Errorf("Failures = %d, want 1", report.Failures)
	}
	if len(report.Imported) != 1 {
		t.Errorf("Imported = %d, want 1", len(report.Imported))
	}
	if !strings.Contains(notifier.digests[0], "Failures: 1") {
		t.Errorf("digest missing failure count:\n%s", notifier.digests[0])
	}
}

func TestProcessRunNotifierErrorNotFatal(t *testing.T) {
	source := &fakeSource{set: domain.CandidateSet{Contacts: []domain.Contact{{ID: "c1"}}}}
	analyzer := &fakeAnalyzer{
		contactBatch: domain.ContactBatch{
			Analyses: []*domain.ContactAnalysis{contactAnalysis("c1", "politics", 0.7)},
		},
	}

	p := NewPipeline(
		PipelineDeps{Source: source, Analyzer: analyzer, Notifier: &fakeNotifier{err: errors.New("telegram down")}},
		PipelineConfig{MinContactScore: 0.4},
	)

	if _, err := p.ProcessRun(context.Background(), time.Now()); err != nil {
		t.Fatalf("expected notifier error to be swallowed, got %v", err)
	}
}

func TestBuildImportDigestOrdering(t *testing.T) {
	report := RunReport{
		BatchID: "batch-1",
		Imported: []domain.ImportedContact{
			{Contact: domain.Contact{Name: "Jane Smith"}, Analysis: domain.ContactAnalysis{
				Beat: domain.BeatAnalysis{PrimaryBeat: "technology"}, OverallScore: 0.82}},
			{Contact: domain.Contact{Name: "Sam Lee"}, Analysis: domain.ContactAnalysis{
				Beat: domain.BeatAnalysis{PrimaryBeat: "technology"}, OverallScore: 0.91}},
			{Contact: domain.Contact{Email: "desk@example.com"}, Analysis: domain.ContactAnalysis{
				OverallScore: 0.45}},
		},
	}

	digest := buildImportDigest(report)

	if !strings.Contains(digest, "*general*") {
		t.Errorf("empty beat should group under general:\n%s", digest)
	}
	if !strings.Contains(digest, "- desk@example.com (0.45)") {
		t.Errorf("nameless contact should list by email:\n%s", digest)
	}
	samIdx := strings.Index(digest, "Sam Lee")
	janeIdx := strings.Index(digest, "Jane Smith")
	if samIdx == -1 || janeIdx == -1 || samIdx > janeIdx {
		t.Errorf("higher score should come first within a beat:\n%s", digest)
	}
}
