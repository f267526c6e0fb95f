package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediacontacts/internal/config"
	"mediacontacts/internal/domain"
)

func TestFetchCandidates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/candidates" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode query: %v", err)
		}
		if payload["topic"] != "technology" {
			t.Errorf("unexpected topic: %v", payload["topic"])
		}

		_, _ = w.Write([]byte(`{
			"contacts": [
				{
					"id": "c1",
					"name": "Jane Smith",
					"email": "jane.smith@localpaper.com",
					"outlets": [
						{"name": "localpaper.com", "bylines": [
							{"url": "https://localpaper.com/technology/story", "title": "Chip story", "published_at": "2026-07-01T00:00:00Z"}
						]}
					]
				}
			],
			"content": [
				{
					"url": "https://localpaper.com/news/budget",
					"title": "Senate Passes Budget Bill",
					"published_at": "2026-07-01T12:00:00Z",
					"raw_html": "<html><head><link rel=\"canonical\" href=\"https://apnews.com/article/budget\"/></head><body><div class=\"byline\">By John Smith</div></body></html>"
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(config.DiscoveryConfig{Endpoint: server.URL, APIKey: "test-key"})

	set, err := client.FetchCandidates(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("FetchCandidates error: %v", err)
	}

	if len(set.Contacts) != 1 || set.Contacts[0].ID != "c1" {
		t.Fatalf("unexpected contacts: %+v", set.Contacts)
	}
	if len(set.Contacts[0].Outlets) != 1 || len(set.Contacts[0].Outlets[0].Bylines) != 1 {
		t.Fatalf("outlet bylines not decoded: %+v", set.Contacts[0].Outlets)
	}

	if len(set.Content) != 1 {
		t.Fatalf("unexpected content count: %d", len(set.Content))
	}
	content := set.Content[0]
	if content.Domain != "localpaper.com" {
		t.Fatalf("domain not derived from URL: %s", content.Domain)
	}
	if content.CanonicalURL != "https://apnews.com/article/budget" {
		t.Fatalf("canonical not enriched from raw HTML: %s", content.CanonicalURL)
	}
	if content.Byline != "By John Smith" {
		t.Fatalf("byline not enriched from raw HTML: %s", content.Byline)
	}
}

func TestFetchCandidatesServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(config.DiscoveryConfig{Endpoint: server.URL})

	_, err := client.FetchCandidates(context.Background(), testQuery())
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func testQuery() domain.DiscoveryQuery {
	return domain.DiscoveryQuery{Topic: "technology", Limit: 5}
}
