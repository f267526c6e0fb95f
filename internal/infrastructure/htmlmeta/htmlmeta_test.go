package htmlmeta

import (
	"strings"
	"testing"
	"time"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	html := `
	<html>
	<head>
	  <title>Senate Passes Budget Bill - Local Paper</title>
	  <link rel="canonical" href="https://apnews.com/article/budget" />
	  <meta property="og:url" content="https://localpaper.com/news/budget" />
	  <meta property="og:title" content="Senate Passes Budget Bill" />
	  <meta property="article:published_time" content="2026-07-01T12:00:00Z" />
	  <meta name="author" content="John Smith" />
	</head>
	<body><div class="byline">By John Smith</div></body>
	</html>`

	meta, err := Extract(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if meta.CanonicalURL != "https://apnews.com/article/budget" {
		t.Fatalf("unexpected canonical: %s", meta.CanonicalURL)
	}
	if meta.Title != "Senate Passes Budget Bill - Local Paper" {
		t.Fatalf("unexpected title: %s", meta.Title)
	}
	if meta.Byline != "By John Smith" {
		t.Fatalf("unexpected byline: %s", meta.Byline)
	}

	want := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)
	if !meta.PublishedAt.Equal(want) {
		t.Fatalf("unexpected published time: %v", meta.PublishedAt)
	}
	if meta.Tags["og:url"] != "https://localpaper.com/news/budget" {
		t.Fatalf("og tags not collected: %v", meta.Tags)
	}
}

func TestExtractCanonicalFallsBackToOgURL(t *testing.T) {
	t.Parallel()

	html := `<html><head><meta property="og:url" content="https://apnews.com/article/x" /></head><body></body></html>`

	meta, err := Extract(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if meta.CanonicalURL != "https://apnews.com/article/x" {
		t.Fatalf("expected og:url fallback, got %q", meta.CanonicalURL)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	t.Parallel()

	meta, err := Extract(strings.NewReader("<html></html>"))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if meta.CanonicalURL != "" || meta.Byline != "" {
		t.Fatalf("expected empty meta, got %+v", meta)
	}
}
