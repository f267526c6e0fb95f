package domain

import "time"

// Contact is a candidate media contact surfaced by the discovery pipeline.
type Contact struct {
	ID             string
	Name           string
	Email          string
	Title          string
	Bio            string
	Outlets        []ContactOutlet
	SocialProfiles map[string]string
}

// ContactOutlet groups a contact's byline history at a single outlet.
type ContactOutlet struct {
	Name    string
	Domain  string
	Bylines []Byline
}

// Byline is one published piece attributed to the contact.
type Byline struct {
	URL         string
	Title       string
	SectionPath string
	Excerpt     string
	PublishedAt time.Time
}

// Content is a single piece of discovered content evaluated for syndication
// and topical classification.
type Content struct {
	URL          string
	Title        string
	Body         string
	Byline       string
	PublishedAt  time.Time
	Domain       string
	SectionPath  string
	CanonicalURL string
	MetaTags     map[string]string
}
