package ports

import (
	"context"
	"time"

	"mediacontacts/internal/domain"
)

// EmailAnalyzer classifies email addresses for outreach priority.
type EmailAnalyzer interface {
	AnalyzeEmail(email, emailDomain string, hint domain.EmailHint) domain.EmailAnalysis
	ScoreEmail(analysis domain.EmailAnalysis) float64
}

// BeatAnalyzer assigns topical beats from URL sections, titles, and body text.
type BeatAnalyzer interface {
	AnalyzeBeat(input domain.BeatInput) domain.BeatAnalysis
	MergeBeatAnalyses(analyses []domain.BeatAnalysis) domain.BeatAnalysis
}

// FreelancerAnalyzer classifies staff-vs-freelance from byline history.
type FreelancerAnalyzer interface {
	AnalyzeFreelancer(input domain.FreelancerInput) domain.FreelancerProfile
}

// SyndicationDetector evaluates content items for syndicated copies.
// Analysis order matters: duplicate detection is stateful within a detector.
type SyndicationDetector interface {
	AnalyzeSyndication(content domain.Content) domain.SyndicationAnalysis
	ClearFingerprints()
}

// FingerprintStore holds dedup fingerprints for a SyndicationDetector.
// Implementations own capacity and eviction policy.
type FingerprintStore interface {
	Get(key string) (domain.Fingerprint, bool)
	Put(key string, fp domain.Fingerprint)
	Clear()
	Len() int
	Range(fn func(key string, fp domain.Fingerprint) bool)
}

// ContactAnalyzer is the orchestrated analysis surface consumed by the
// import pipeline.
type ContactAnalyzer interface {
	BatchAnalyzeContacts(ctx context.Context, contacts []domain.Contact) domain.ContactBatch
	BatchAnalyzeContent(ctx context.Context, contents []domain.Content) domain.ContentBatch
}

// CandidateSource pulls candidate contacts and content from the opaque
// discovery collaborator.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, query domain.DiscoveryQuery) (domain.CandidateSet, error)
}

// ContactRepository persists imported contacts for deduplication and audit.
type ContactRepository interface {
	AlreadyImported(ctx context.Context, ids []string) (map[string]bool, error)
	SaveContact(ctx context.Context, record domain.ImportedContact) error
}

// Notifier streams import digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when import runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
