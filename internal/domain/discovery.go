package domain

import "time"

// DiscoveryQuery describes what the discovery collaborator should search for.
type DiscoveryQuery struct {
	Topic    string
	Country  string
	Language string
	Limit    int
}

// CandidateSet is one discovery response: contacts to evaluate plus the
// content items they were extracted from.
type CandidateSet struct {
	Contacts []Contact
	Content  []Content
}

// ImportStatus enumerates the outcome recorded for a reviewed candidate.
type ImportStatus string

const (
	ImportAccepted ImportStatus = "accepted"
	ImportRejected ImportStatus = "rejected"
)

// ImportedContact is the persisted snapshot of an accepted candidate together
// with the analysis that justified the decision.
type ImportedContact struct {
	Contact    Contact
	Analysis   ContactAnalysis
	Status     ImportStatus
	BatchID    string
	ImportedAt time.Time
}
