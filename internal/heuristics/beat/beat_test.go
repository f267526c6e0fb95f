package beat

import (
	"testing"
	"time"

	"mediacontacts/internal/domain"
)

func TestAnalyzeBeatSectionPath(t *testing.T) {
	t.Parallel()

	a := New()
	got := a.AnalyzeBeat(domain.BeatInput{
		URL: "https://localpaper.com/technology/chip-shortage-easing",
	})

	if got.PrimaryBeat != "technology" {
		t.Fatalf("expected technology, got %s", got.PrimaryBeat)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("expected section confidence 0.9, got %v", got.Confidence)
	}
	if len(got.Sources.SectionBased) != 1 || got.Sources.SectionBased[0] != "technology" {
		t.Fatalf("unexpected section sources: %v", got.Sources.SectionBased)
	}
}

func TestAnalyzeBeatSectionPathField(t *testing.T) {
	t.Parallel()

	a := New()
	got := a.AnalyzeBeat(domain.BeatInput{SectionPath: "/politics/2026/senate-races"})

	if got.PrimaryBeat != "politics" {
		t.Fatalf("expected politics, got %s", got.PrimaryBeat)
	}
}

func TestAnalyzeBeatKeywords(t *testing.T) {
	t.Parallel()

	a := New()
	got := a.AnalyzeBeat(domain.BeatInput{
		Title: "Startup raises funding for cybersecurity software",
		Body:  "The company builds an algorithm for threat detection.",
	})

	if got.PrimaryBeat != "technology" {
		t.Fatalf("expected technology, got %s", got.PrimaryBeat)
	}
	if len(got.Sources.KeywordBased) == 0 {
		t.Fatal("expected keyword-based sources")
	}
	if got.Confidence > 0.8 {
		t.Fatalf("keyword confidence must cap at 0.8, got %v", got.Confidence)
	}
}

func TestAnalyzeBeatNoSignal(t *testing.T) {
	t.Parallel()

	a := New()
	got := a.AnalyzeBeat(domain.BeatInput{Title: "Untitled", Body: "nothing topical here"})

	if got.PrimaryBeat != "general" {
		t.Fatalf("expected general fallback, got %s", got.PrimaryBeat)
	}
	if got.Confidence != 0.2 {
		t.Fatalf("expected fallback confidence 0.2, got %v", got.Confidence)
	}
}

func TestMergeBeatAnalysesRecencyWeighting(t *testing.T) {
	t.Parallel()

	a := New()

	// Oldest-first: two old politics pieces, one recent technology piece
	// with a section hit. Recency weighting should not let a single recent
	// low-confidence item override two strong earlier ones, but a strong
	// recent section hit outweighs older keyword-only matches.
	old := domain.BeatAnalysis{PrimaryBeat: "politics", Confidence: 0.4}
	recent := domain.BeatAnalysis{
		PrimaryBeat: "technology",
		Confidence:  0.9,
		Sources:     domain.BeatSources{SectionBased: []string{"technology"}},
	}

	merged := a.MergeBeatAnalyses([]domain.BeatAnalysis{old, old, recent})

	if merged.PrimaryBeat != "technology" {
		t.Fatalf("expected technology to win merge, got %s", merged.PrimaryBeat)
	}
	if len(merged.Sources.SectionBased) != 1 {
		t.Fatalf("expected merged section sources, got %v", merged.Sources.SectionBased)
	}
	if merged.Confidence <= 0 || merged.Confidence > 1 {
		t.Fatalf("merged confidence out of range: %v", merged.Confidence)
	}
}

func TestMergeBeatAnalysesSingle(t *testing.T) {
	t.Parallel()

	a := New()
	single := domain.BeatAnalysis{PrimaryBeat: "health", Confidence: 0.7}

	merged := a.MergeBeatAnalyses([]domain.BeatAnalysis{single})
	if merged.PrimaryBeat != "health" || merged.Confidence != 0.7 {
		t.Fatalf("single-entry merge must be identity, got %+v", merged)
	}
}

func TestMergeBeatAnalysesEmpty(t *testing.T) {
	t.Parallel()

	a := New()
	merged := a.MergeBeatAnalyses(nil)
	if merged.PrimaryBeat != "general" {
		t.Fatalf("expected general for empty merge, got %s", merged.PrimaryBeat)
	}
}

func TestAnalyzeBeatSecondaryBeats(t *testing.T) {
	t.Parallel()

	a := New()
	got := a.AnalyzeBeat(domain.BeatInput{
		URL:         "https://localpaper.com/business/markets-update",
		Title:       "Stock rally continues as earnings beat forecasts",
		Body:        "Senate legislation on chip subsidies also moved markets.",
		PublishedAt: time.Now(),
	})

	if got.PrimaryBeat != "business" {
		t.Fatalf("expected business, got %s", got.PrimaryBeat)
	}
	if len(got.SecondaryBeats) == 0 {
		t.Fatal("expected secondary beats from keyword hits")
	}
}
