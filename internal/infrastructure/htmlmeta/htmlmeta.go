// Package htmlmeta extracts canonical URLs, bylines, and meta tags from raw
// HTML so discovered content can feed syndication analysis.
package htmlmeta

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Meta is the extracted page metadata.
type Meta struct {
	Title        string
	CanonicalURL string
	Byline       string
	PublishedAt  time.Time
	Tags         map[string]string
}

// Extract parses HTML and pulls the fields syndication analysis cares about.
func Extract(r io.Reader) (Meta, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Meta{}, fmt.Errorf("parse html: %w", err)
	}

	meta := Meta{Tags: map[string]string{}}

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		meta.CanonicalURL = strings.TrimSpace(href)
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, _ := s.Attr("property")
		if key == "" {
			key, _ = s.Attr("name")
		}
		content, _ := s.Attr("content")
		key = strings.TrimSpace(key)
		content = strings.TrimSpace(content)
		if key == "" || content == "" {
			return
		}
		if strings.HasPrefix(key, "og:") || strings.HasPrefix(key, "article:") || key == "author" || key == "canonical" {
			meta.Tags[key] = content
		}
	})

	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if meta.Title == "" {
		meta.Title = meta.Tags["og:title"]
	}

	if meta.CanonicalURL == "" {
		meta.CanonicalURL = meta.Tags["og:url"]
	}

	meta.Byline = strings.TrimSpace(doc.Find(`[rel="author"]`).First().Text())
	if meta.Byline == "" {
		meta.Byline = strings.TrimSpace(doc.Find(".byline").First().Text())
	}
	if meta.Byline == "" {
		meta.Byline = meta.Tags["author"]
	}

	if raw := meta.Tags["article:published_time"]; raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			meta.PublishedAt = ts
		}
	}

	return meta, nil
}
