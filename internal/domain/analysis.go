package domain

import "time"

// EmailType classifies who is likely to read an inbox.
type EmailType string

const (
	EmailPersonal   EmailType = "personal"
	EmailAlias      EmailType = "alias"
	EmailGeneric    EmailType = "generic"
	EmailDepartment EmailType = "department"
	EmailUnknown    EmailType = "unknown"
)

// AliasType narrows an alias inbox to its editorial purpose.
type AliasType string

const (
	AliasTips      AliasType = "tips"
	AliasNewsdesk  AliasType = "newsdesk"
	AliasEditorial AliasType = "editorial"
	AliasPress     AliasType = "press"
	AliasContact   AliasType = "contact"
	AliasInfo      AliasType = "info"
	AliasHello     AliasType = "hello"
)

// Priority ranks outreach value.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// EmailAnalysis is the classification of a single email address.
type EmailAnalysis struct {
	Email           string
	EmailType       EmailType
	AliasType       AliasType
	Confidence      float64
	IsDirectContact bool
	Priority        Priority
	Reasoning       string
	Suggestions     *EmailSuggestions
}

// EmailSuggestions carries follow-up guidance attached to a classification.
type EmailSuggestions struct {
	AlternativeEmails []string
	ContactMethod     string
	Notes             string
}

// EmailValidation reports structural problems with an address string.
type EmailValidation struct {
	IsValid     bool
	Issues      []string
	Suggestions []string
}

// EmailHint carries optional caller context used to improve suggestions.
type EmailHint struct {
	ContactName string
	Title       string
}

// BeatInput is one piece of evidence for topical classification.
type BeatInput struct {
	URL         string
	SectionPath string
	Title       string
	Body        string
	PublishedAt time.Time
}

// BeatSources records which evidence produced a beat assignment.
type BeatSources struct {
	SectionBased []string
	KeywordBased []string
}

// BeatAnalysis is a topical-beat classification.
type BeatAnalysis struct {
	PrimaryBeat    string
	SecondaryBeats []string
	Confidence     float64
	Sources        BeatSources
}

// FreelancerInput is a contact's cross-outlet byline history.
type FreelancerInput struct {
	Name    string
	Bio     string
	Outlets []ContactOutlet
}

// OutletActivity summarizes a contact's presence at one outlet.
type OutletActivity struct {
	Name         string
	BylineCount  int
	LastBylineAt time.Time
}

// RecentActivity aggregates how alive the byline history is.
type RecentActivity struct {
	ActiveOutlets int
	LastBylineAt  time.Time
}

// FreelancerProfile is the staff-vs-freelance classification of a contact.
type FreelancerProfile struct {
	IsFreelancer    bool
	Confidence      float64
	PrimaryOutlet   string
	Outlets         []OutletActivity
	RecentActivity  RecentActivity
	ContactStrategy string
	Warnings        []string
}

// RecommendationType enumerates typed action items produced by the analyzers.
type RecommendationType string

const (
	RecommendSkipDuplicate     RecommendationType = "skip_duplicate"
	RecommendUseOriginal       RecommendationType = "use_original"
	RecommendVerifyAuthor      RecommendationType = "verify_author"
	RecommendCheckCanonical    RecommendationType = "check_canonical"
	RecommendVerifyBeat        RecommendationType = "verify_beat"
	RecommendUseSectionBeats   RecommendationType = "use_section_beats"
	RecommendFindDirectContact RecommendationType = "find_direct_contact"
	RecommendPrioritizeContact RecommendationType = "prioritize_contact"
	RecommendContactStrategy   RecommendationType = "contact_strategy"
	RecommendOutletOverlap     RecommendationType = "outlet_overlap"
)

// Recommendation is a typed, prioritized action item for the reviewer.
type Recommendation struct {
	Type        RecommendationType
	Priority    Priority
	Title       string
	Description string
	Action      string
	Confidence  float64
}

// SourceInfo identifies the presumed first publisher of a duplicated story.
type SourceInfo struct {
	Domain           string
	Outlet           string
	PublishedAt      time.Time
	Confidence       float64
	IsOriginalSource bool
}

// SyndicationAnalysis is the verdict on whether content is a syndicated copy.
type SyndicationAnalysis struct {
	URL                string
	IsSyndicated       bool
	Confidence         float64
	OriginalSource     *SourceInfo
	SyndicationNetwork string
	CanonicalURL       string
	DuplicateURLs      []string
	Reasoning          []string
	Recommendations    []Recommendation
}

// FingerprintEntry is one observed occurrence of fingerprinted content.
type FingerprintEntry struct {
	URL         string
	Domain      string
	PublishedAt time.Time
}

// Fingerprint is the dedup record shared by all copies of one story,
// keyed by (title hash, author hash).
type Fingerprint struct {
	TitleHash   string
	ContentHash string
	AuthorHash  string
	Earliest    time.Time
	Latest      time.Time
	Entries     []FingerprintEntry
}

// URLs returns every URL recorded for the fingerprint, in observation order.
func (f Fingerprint) URLs() []string {
	urls := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		urls = append(urls, e.URL)
	}
	return urls
}

// AnalysisMetadata stamps one orchestrated analysis run.
type AnalysisMetadata struct {
	ID             string
	Version        string
	Timestamp      time.Time
	ProcessingTime time.Duration
}

// ContactAnalysis is the aggregate per-contact result.
type ContactAnalysis struct {
	Contact         Contact
	Beat            BeatAnalysis
	Email           EmailAnalysis
	Freelancer      *FreelancerProfile
	OverallScore    float64
	Recommendations []Recommendation
	Warnings        []string
	Metadata        AnalysisMetadata
}

// ContentAnalysis is the aggregate per-content result.
type ContentAnalysis struct {
	Content         Content
	Beat            BeatAnalysis
	Syndication     SyndicationAnalysis
	Recommendations []Recommendation
	ShouldSkip      bool
}

// BatchFailure records a single item that could not be analyzed.
type BatchFailure struct {
	Index int
	ID    string
	Err   error
}

// ContactBatch separates analyzed contacts from per-item failures so one bad
// record never sinks the batch.
type ContactBatch struct {
	Analyses []*ContactAnalysis
	Failures []BatchFailure
}

// ContentBatch partitions analyzed content into original vs syndicated.
type ContentBatch struct {
	Original   []*ContentAnalysis
	Syndicated []*ContentAnalysis
	Failures   []BatchFailure
}
