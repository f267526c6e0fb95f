// Package discovery talks to the external contact-discovery service. The
// service itself (and whatever AI vendors it queries) is an opaque
// collaborator; this client only owns the structured-results boundary.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediacontacts/internal/config"
	"mediacontacts/internal/domain"
	"mediacontacts/internal/infrastructure/htmlmeta"
	"mediacontacts/internal/ports"
)

// Client fetches candidate contacts and content over HTTP.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.CandidateSource = (*Client)(nil)

// NewClient creates a reusable HTTP client from configuration.
func NewClient(cfg config.DiscoveryConfig) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type queryPayload struct {
	Topic    string `json:"topic"`
	Country  string `json:"country,omitempty"`
	Language string `json:"language,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type bylineDTO struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	SectionPath string    `json:"section_path,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

type outletDTO struct {
	Name    string      `json:"name"`
	Domain  string      `json:"domain,omitempty"`
	Bylines []bylineDTO `json:"bylines"`
}

type contactDTO struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Title          string            `json:"title,omitempty"`
	Bio            string            `json:"bio,omitempty"`
	Outlets        []outletDTO       `json:"outlets"`
	SocialProfiles map[string]string `json:"social_profiles,omitempty"`
}

type contentDTO struct {
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Body         string    `json:"body,omitempty"`
	Byline       string    `json:"byline,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	Domain       string    `json:"domain,omitempty"`
	SectionPath  string    `json:"section_path,omitempty"`
	CanonicalURL string    `json:"canonical_url,omitempty"`
	RawHTML      string    `json:"raw_html,omitempty"`
}

type candidatesResponse struct {
	Contacts []contactDTO `json:"contacts"`
	Content  []contentDTO `json:"content"`
}

// FetchCandidates posts the query and decodes the structured result set.
// Content items carrying raw HTML are enriched with extracted canonical and
// byline metadata before being handed to analysis.
func (c *Client) FetchCandidates(ctx context.Context, query domain.DiscoveryQuery) (domain.CandidateSet, error) {
	body, err := json.Marshal(queryPayload{
		Topic:    query.Topic,
		Country:  query.Country,
		Language: query.Language,
		Limit:    query.Limit,
	})
	if err != nil {
		return domain.CandidateSet{}, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/candidates", bytes.NewReader(body))
	if err != nil {
		return domain.CandidateSet{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.CandidateSet{}, fmt.Errorf("fetch candidates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.CandidateSet{}, fmt.Errorf("discovery returned %s", resp.Status)
	}

	var decoded candidatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.CandidateSet{}, fmt.Errorf("decode candidates: %w", err)
	}

	return toCandidateSet(decoded), nil
}

func toCandidateSet(resp candidatesResponse) domain.CandidateSet {
	set := domain.CandidateSet{
		Contacts: make([]domain.Contact, 0, len(resp.Contacts)),
		Content:  make([]domain.Content, 0, len(resp.Content)),
	}

	for _, dto := range resp.Contacts {
		contact := domain.Contact{
			ID:             dto.ID,
			Name:           dto.Name,
			Email:          dto.Email,
			Title:          dto.Title,
			Bio:            dto.Bio,
			SocialProfiles: dto.SocialProfiles,
		}
		for _, o := range dto.Outlets {
			outlet := domain.ContactOutlet{Name: o.Name, Domain: o.Domain}
			for _, b := range o.Bylines {
				outlet.Bylines = append(outlet.Bylines, domain.Byline{
					URL:         b.URL,
					Title:       b.Title,
					SectionPath: b.SectionPath,
					Excerpt:     b.Excerpt,
					PublishedAt: b.PublishedAt,
				})
			}
			contact.Outlets = append(contact.Outlets, outlet)
		}
		set.Contacts = append(set.Contacts, contact)
	}

	for _, dto := range resp.Content {
		content := domain.Content{
			URL:          dto.URL,
			Title:        dto.Title,
			Body:         dto.Body,
			Byline:       dto.Byline,
			PublishedAt:  dto.PublishedAt,
			Domain:       dto.Domain,
			SectionPath:  dto.SectionPath,
			CanonicalURL: dto.CanonicalURL,
		}
		if content.Domain == "" {
			if u, err := url.Parse(content.URL); err == nil {
				content.Domain = u.Hostname()
			}
		}
		if dto.RawHTML != "" {
			enrichFromHTML(&content, dto.RawHTML)
		}
		set.Content = append(set.Content, content)
	}

	return set
}

// enrichFromHTML fills gaps in the content record from the page itself.
// Extraction failures leave the record as delivered.
func enrichFromHTML(content *domain.Content, rawHTML string) {
	meta, err := htmlmeta.Extract(strings.NewReader(rawHTML))
	if err != nil {
		return
	}

	if content.CanonicalURL == "" {
		content.CanonicalURL = meta.CanonicalURL
	}
	if content.Byline == "" {
		content.Byline = meta.Byline
	}
	if content.Title == "" {
		content.Title = meta.Title
	}
	if content.PublishedAt.IsZero() {
		content.PublishedAt = meta.PublishedAt
	}
	if len(meta.Tags) > 0 {
		if content.MetaTags == nil {
			content.MetaTags = map[string]string{}
		}
		for k, v := range meta.Tags {
			if _, exists := content.MetaTags[k]; !exists {
				content.MetaTags[k] = v
			}
		}
	}
}
