package syndication

import (
	"fmt"
	"testing"
	"time"

	"mediacontacts/internal/domain"
)

func storyContent(urlStr, dom, title, byline string) domain.Content {
	return domain.Content{
		URL:         urlStr,
		Title:       title,
		Byline:      byline,
		Domain:      dom,
		PublishedAt: time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDuplicateDetectionOrder(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)

	a := storyContent("https://apnews.com/article/budget-1", "apnews.com", "Senate Passes Budget Bill", "By John Smith")
	b := storyContent("https://localpaper.com/news/budget", "localpaper.com", "senate  passes BUDGET bill", "By John Smith")

	first := d.AnalyzeSyndication(a)
	if len(first.DuplicateURLs) != 0 {
		t.Fatalf("first occurrence must report no duplicates, got %v", first.DuplicateURLs)
	}

	second := d.AnalyzeSyndication(b)
	if !second.IsSyndicated {
		t.Fatal("duplicate item must be flagged syndicated")
	}
	if second.Confidence < 0.9 {
		t.Fatalf("duplicate confidence must be floored at 0.9, got %v", second.Confidence)
	}
	if len(second.DuplicateURLs) != 1 || second.DuplicateURLs[0] != a.URL {
		t.Fatalf("expected duplicate URLs to contain %s, got %v", a.URL, second.DuplicateURLs)
	}
	if second.OriginalSource == nil {
		t.Fatal("expected an original source for the duplicate")
	}
	if second.OriginalSource.Domain != "apnews.com" {
		t.Fatalf("expected apnews.com as original, got %s", second.OriginalSource.Domain)
	}
	if !second.OriginalSource.IsOriginalSource {
		t.Fatal("apnews.com is a primary source and must be marked original")
	}
}

func TestCanonicalMismatch(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)
	content := storyContent("https://localpaper.com/news/story", "localpaper.com", "Markets Rally", "By Jane Doe")
	content.CanonicalURL = "https://www.reuters.com/markets/story"

	got := d.AnalyzeSyndication(content)

	if !got.IsSyndicated {
		t.Fatal("canonical mismatch must flag syndication")
	}
	if got.Confidence < 0.8 {
		t.Fatalf("canonical mismatch confidence must be >= 0.8, got %v", got.Confidence)
	}
	if got.Confidence != 0.95 {
		t.Fatalf("wire-service canonical domain should score 0.95, got %v", got.Confidence)
	}
	if got.CanonicalURL != content.CanonicalURL {
		t.Fatalf("expected canonical URL surfaced, got %q", got.CanonicalURL)
	}

	foundUseOriginal := false
	for _, r := range got.Recommendations {
		if r.Type == domain.RecommendUseOriginal {
			foundUseOriginal = true
		}
	}
	if !foundUseOriginal {
		t.Fatal("expected a use_original recommendation")
	}
}

func TestCanonicalMismatchNonWireDomain(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)
	content := storyContent("https://localpaper.com/news/story", "localpaper.com", "City Council Votes", "By Jane Doe")
	content.MetaTags = map[string]string{"canonical": "https://otherpaper.com/story"}

	got := d.AnalyzeSyndication(content)

	if !got.IsSyndicated {
		t.Fatal("canonical mismatch must flag syndication")
	}
	if got.Confidence != 0.8 {
		t.Fatalf("non-wire canonical domain should score 0.8, got %v", got.Confidence)
	}
}

func TestCanonicalSameRegistrableDomain(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)
	content := storyContent("https://www.localpaper.com/news/story", "www.localpaper.com", "Weather Update", "By Staff")
	content.CanonicalURL = "https://amp.localpaper.com/news/story"

	got := d.AnalyzeSyndication(content)
	if got.IsSyndicated {
		t.Fatalf("subdomain-only canonical difference must not flag: %+v", got.Reasoning)
	}
}

func TestNetworkDetection(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)
	content := storyContent("https://localpaper.com/news/story", "localpaper.com", "Storm Hits Coast", "By The Associated Press")
	content.Body = "WASHINGTON (AP) — A major storm system moved ashore Tuesday."

	got := d.AnalyzeSyndication(content)

	if got.SyndicationNetwork != "Associated Press" {
		t.Fatalf("expected Associated Press network, got %q", got.SyndicationNetwork)
	}
	// Wire markers are circumstantial: without canonical or duplicate
	// corroboration they surface a recommendation, not a verdict.
	if got.IsSyndicated {
		t.Fatalf("markers alone must not cross the verdict threshold, got confidence %v", got.Confidence)
	}
	foundSkipWire := false
	for _, r := range got.Recommendations {
		if r.Type == domain.RecommendSkipDuplicate {
			foundSkipWire = true
		}
	}
	if !foundSkipWire {
		t.Fatal("expected a skip recommendation for the wire copy")
	}

	// A canonical pointer back to the wire service corroborates the markers.
	content.CanonicalURL = "https://apnews.com/article/storm-coast"
	if got := d.AnalyzeSyndication(content); !got.IsSyndicated {
		t.Fatal("markers plus wire canonical must flag syndication")
	}
}

func TestReputationAloneDoesNotFlag(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)
	content := storyContent("https://msn.com/news/story", "msn.com", "Unique Local Story", "By Dana Reyes")

	got := d.AnalyzeSyndication(content)

	if got.IsSyndicated {
		t.Fatalf("a republication-heavy host alone must not flag syndication, got confidence %v", got.Confidence)
	}
	if got.Confidence >= DefaultFilterThreshold {
		t.Fatalf("reputation-only confidence %v must stay below the skip threshold", got.Confidence)
	}

	foundVerify := false
	for _, r := range got.Recommendations {
		if r.Type == domain.RecommendVerifyAuthor {
			foundVerify = true
		}
	}
	if !foundVerify {
		t.Fatal("expected a verify_author recommendation for the heavy domain")
	}
}

func TestClearFingerprintsResetsDuplicates(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)
	a := storyContent("https://one.com/s", "one.com", "Shared Story", "By A. Writer")
	b := storyContent("https://two.com/s", "two.com", "Shared Story", "By A. Writer")

	d.AnalyzeSyndication(a)
	if got := d.AnalyzeSyndication(b); len(got.DuplicateURLs) == 0 {
		t.Fatal("expected duplicate before clear")
	}

	d.ClearFingerprints()
	if got := d.AnalyzeSyndication(b); len(got.DuplicateURLs) != 0 {
		t.Fatalf("clear must reset duplicate detection, got %v", got.DuplicateURLs)
	}
}

func TestFilterSyndicatedContent(t *testing.T) {
	t.Parallel()

	analyses := []domain.SyndicationAnalysis{
		{URL: "a", IsSyndicated: false, Confidence: 0.9},
		{URL: "b", IsSyndicated: true, Confidence: 0.65},
		{URL: "c", IsSyndicated: true, Confidence: 0.95},
	}

	kept := FilterSyndicatedContent(analyses, DefaultFilterThreshold)

	if len(kept) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(kept))
	}
	for _, a := range kept {
		if a.URL == "c" {
			t.Fatal("high-confidence syndicated item must be dropped")
		}
		if a.IsSyndicated && a.Confidence >= DefaultFilterThreshold {
			t.Fatalf("kept item violates threshold: %+v", a)
		}
	}
}

func TestDomainReputation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		domain   string
		detected bool
		conf     float64
	}{
		{"msn.com", true, 0.8},
		{"news.localpaper.com", true, 0.6},
		{"wire.example.org", true, 0.6},
		{"localpaper.com", false, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			got := checkDomainReputation(tt.domain)
			if got.detected != tt.detected || got.confidence != tt.conf {
				t.Fatalf("checkDomainReputation(%s) = %+v", tt.domain, got)
			}
		})
	}
}

func TestOriginalSourceEarliestFallback(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)
	base := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

	// Neither domain is a primary source; the earliest-dated entry wins.
	later := storyContent("https://bpaper.com/s", "bpaper.com", "Regional Story", "By R. Jones")
	later.PublishedAt = base.Add(48 * time.Hour)
	earlier := storyContent("https://apaper.com/s", "apaper.com", "Regional Story", "By R. Jones")
	earlier.PublishedAt = base

	d.AnalyzeSyndication(later)
	got := d.AnalyzeSyndication(earlier)

	if got.OriginalSource == nil {
		t.Fatal("expected original source")
	}
	if got.OriginalSource.Domain != "apaper.com" {
		t.Fatalf("expected earliest-dated apaper.com, got %s", got.OriginalSource.Domain)
	}
	if got.OriginalSource.IsOriginalSource {
		t.Fatal("fallback source must not claim primary-source status")
	}
	if got.OriginalSource.Confidence != 0.6 {
		t.Fatalf("fallback confidence must be 0.6, got %v", got.OriginalSource.Confidence)
	}
}

func TestBatchAnalyzeSequentialOrdering(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)
	contents := []domain.Content{
		storyContent("https://first.com/s", "first.com", "Batch Story", "By B. Author"),
		storyContent("https://second.com/s", "second.com", "Batch Story", "By B. Author"),
		storyContent("https://third.com/s", "third.com", "Batch Story", "By B. Author"),
	}

	analyses := d.BatchAnalyzeSyndication(contents)

	if len(analyses[0].DuplicateURLs) != 0 {
		t.Fatal("first item must not see later duplicates")
	}
	if len(analyses[1].DuplicateURLs) != 1 {
		t.Fatalf("second item must see exactly the first, got %v", analyses[1].DuplicateURLs)
	}
	if len(analyses[2].DuplicateURLs) != 2 {
		t.Fatalf("third item must see both earlier copies, got %v", analyses[2].DuplicateURLs)
	}
}

func TestGetSyndicationStats(t *testing.T) {
	t.Parallel()

	d := New(nil, nil)
	d.AnalyzeSyndication(storyContent("https://a.com/1", "a.com", "Story One", "By X"))
	d.AnalyzeSyndication(storyContent("https://b.com/1", "b.com", "Story One", "By X"))
	d.AnalyzeSyndication(storyContent("https://c.com/2", "c.com", "Story Two", "By Y"))

	stats := d.GetSyndicationStats()

	if stats.TotalFingerprints != 2 {
		t.Fatalf("expected 2 fingerprints, got %d", stats.TotalFingerprints)
	}
	if stats.DuplicateGroups != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", stats.DuplicateGroups)
	}
	if len(stats.TopDomains) != 2 {
		t.Fatalf("expected 2 top domains, got %v", stats.TopDomains)
	}
}

func TestMemoryStoreEviction(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(2)
	for i := 0; i < 3; i++ {
		s.Put(fmt.Sprintf("k%d", i), domain.Fingerprint{TitleHash: fmt.Sprintf("t%d", i)})
	}

	if s.Len() != 2 {
		t.Fatalf("expected capacity 2, got %d", s.Len())
	}
	if _, ok := s.Get("k0"); ok {
		t.Fatal("oldest entry must be evicted")
	}
	if _, ok := s.Get("k2"); !ok {
		t.Fatal("newest entry must survive")
	}
}

func TestGetOriginalSourcesDedup(t *testing.T) {
	t.Parallel()

	analyses := []domain.SyndicationAnalysis{
		{OriginalSource: &domain.SourceInfo{Domain: "apnews.com"}},
		{OriginalSource: &domain.SourceInfo{Domain: "apnews.com"}},
		{OriginalSource: &domain.SourceInfo{Domain: "reuters.com"}},
		{},
	}

	sources := GetOriginalSources(analyses)
	if len(sources) != 2 {
		t.Fatalf("expected 2 distinct sources, got %d", len(sources))
	}
}

func TestAuthorFromByline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		byline string
		want   string
	}{
		{"By John Smith", "john smith"},
		{"By John Smith and Jane Doe", "john smith"},
		{"John Smith, Staff Writer", "john smith"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := authorFromByline(tt.byline); got != tt.want {
			t.Fatalf("authorFromByline(%q) = %q, want %q", tt.byline, got, tt.want)
		}
	}
}
