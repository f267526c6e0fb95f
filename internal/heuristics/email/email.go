// Package email classifies email addresses into personal, alias, generic,
// department, and unknown buckets and scores them for outreach priority.
package email

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"mediacontacts/internal/domain"
	"mediacontacts/internal/ports"
)

// Rule is one classification pattern evaluated against the lower-cased
// address. Patterns anchor on the local part (e.g. `^tips@`).
type Rule struct {
	Pattern    string
	Type       domain.EmailType
	Alias      domain.AliasType
	Priority   domain.Priority
	Confidence float64
	Reason     string
}

type compiledRule struct {
	expr *regexp.Regexp
	rule Rule
}

// DomainOverride refines classification for a specific outlet domain.
type DomainOverride struct {
	Domain           string
	PersonalPatterns []Rule
	AliasPatterns    []Rule
}

type compiledOverride struct {
	personal []compiledRule
	aliases  []compiledRule
}

// Analyzer is a stateless email classifier. Analysis never fails; inputs
// that match nothing degrade to the unknown bucket.
type Analyzer struct {
	rules     []compiledRule
	overrides map[string]compiledOverride
}

var _ ports.EmailAnalyzer = (*Analyzer)(nil)

// DefaultRules returns the built-in pattern table. Order matters: ties on
// confidence are broken by position, first declared wins.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: `^tips@`, Type: domain.EmailAlias, Alias: domain.AliasTips, Priority: domain.PriorityMedium, Confidence: 0.95, Reason: "tip-line inbox"},
		{Pattern: `^newstips@`, Type: domain.EmailAlias, Alias: domain.AliasTips, Priority: domain.PriorityMedium, Confidence: 0.95, Reason: "tip-line inbox"},
		{Pattern: `^scoops@`, Type: domain.EmailAlias, Alias: domain.AliasTips, Priority: domain.PriorityMedium, Confidence: 0.85, Reason: "tip-line inbox"},
		{Pattern: `^newsdesk@`, Type: domain.EmailAlias, Alias: domain.AliasNewsdesk, Priority: domain.PriorityMedium, Confidence: 0.95, Reason: "newsdesk inbox"},
		{Pattern: `^news@`, Type: domain.EmailAlias, Alias: domain.AliasNewsdesk, Priority: domain.PriorityMedium, Confidence: 0.9, Reason: "newsdesk inbox"},
		{Pattern: `^desk@`, Type: domain.EmailAlias, Alias: domain.AliasNewsdesk, Priority: domain.PriorityMedium, Confidence: 0.8, Reason: "newsdesk inbox"},
		{Pattern: `^editorial@`, Type: domain.EmailAlias, Alias: domain.AliasEditorial, Priority: domain.PriorityMedium, Confidence: 0.9, Reason: "editorial inbox"},
		{Pattern: `^editors?@`, Type: domain.EmailAlias, Alias: domain.AliasEditorial, Priority: domain.PriorityMedium, Confidence: 0.85, Reason: "editorial inbox"},
		{Pattern: `^press@`, Type: domain.EmailAlias, Alias: domain.AliasPress, Priority: domain.PriorityMedium, Confidence: 0.9, Reason: "press-office inbox"},
		{Pattern: `^pressoffice@`, Type: domain.EmailAlias, Alias: domain.AliasPress, Priority: domain.PriorityMedium, Confidence: 0.85, Reason: "press-office inbox"},
		{Pattern: `^media@`, Type: domain.EmailAlias, Alias: domain.AliasPress, Priority: domain.PriorityMedium, Confidence: 0.8, Reason: "media-relations inbox"},
		{Pattern: `^contact@`, Type: domain.EmailAlias, Alias: domain.AliasContact, Priority: domain.PriorityLow, Confidence: 0.85, Reason: "general contact inbox"},
		{Pattern: `^info@`, Type: domain.EmailAlias, Alias: domain.AliasInfo, Priority: domain.PriorityLow, Confidence: 0.9, Reason: "info inbox"},
		{Pattern: `^hello@`, Type: domain.EmailAlias, Alias: domain.AliasHello, Priority: domain.PriorityLow, Confidence: 0.85, Reason: "hello inbox"},
		{Pattern: `^(sports|business|politics|tech|technology|culture|lifestyle|opinion)@`, Type: domain.EmailDepartment, Priority: domain.PriorityMedium, Confidence: 0.85, Reason: "section desk inbox"},
		{Pattern: `^(features|investigations|national|world|metro|city)@`, Type: domain.EmailDepartment, Priority: domain.PriorityMedium, Confidence: 0.8, Reason: "section desk inbox"},
		{Pattern: `^no-?reply@`, Type: domain.EmailGeneric, Priority: domain.PriorityLow, Confidence: 0.95, Reason: "unmonitored sender address"},
		{Pattern: `^(admin|webmaster|postmaster)@`, Type: domain.EmailGeneric, Priority: domain.PriorityLow, Confidence: 0.9, Reason: "administrative inbox"},
		{Pattern: `^(support|help)@`, Type: domain.EmailGeneric, Priority: domain.PriorityLow, Confidence: 0.85, Reason: "support inbox"},
		{Pattern: `^(sales|marketing|advertising|ads)@`, Type: domain.EmailGeneric, Priority: domain.PriorityLow, Confidence: 0.85, Reason: "commercial inbox"},
		{Pattern: `^(careers|jobs|hr)@`, Type: domain.EmailGeneric, Priority: domain.PriorityLow, Confidence: 0.85, Reason: "recruiting inbox"},
		{Pattern: `^[a-z]+\.[a-z]+@`, Type: domain.EmailPersonal, Priority: domain.PriorityHigh, Confidence: 0.8, Reason: "firstname.lastname address"},
		{Pattern: `^[a-z]\.[a-z]+@`, Type: domain.EmailPersonal, Priority: domain.PriorityHigh, Confidence: 0.75, Reason: "initial.lastname address"},
		{Pattern: `^[a-z]+_[a-z]+@`, Type: domain.EmailPersonal, Priority: domain.PriorityHigh, Confidence: 0.75, Reason: "firstname_lastname address"},
		{Pattern: `^[a-z]+-[a-z]+@`, Type: domain.EmailPersonal, Priority: domain.PriorityHigh, Confidence: 0.7, Reason: "firstname-lastname address"},
		{Pattern: `^[a-z]{2,}[a-z]+\d{1,3}@`, Type: domain.EmailPersonal, Priority: domain.PriorityMedium, Confidence: 0.6, Reason: "name-with-digits address"},
	}
}

// DefaultOverrides returns per-outlet refinements for major publications.
func DefaultOverrides() []DomainOverride {
	return []DomainOverride{
		{
			Domain: "nytimes.com",
			PersonalPatterns: []Rule{
				{Pattern: `^[a-z]+\.[a-z]+@`, Type: domain.EmailPersonal, Priority: domain.PriorityHigh, Confidence: 0.95, Reason: "NYT staff address format"},
			},
		},
		{
			Domain: "wsj.com",
			PersonalPatterns: []Rule{
				{Pattern: `^[a-z]+\.[a-z]+@`, Type: domain.EmailPersonal, Priority: domain.PriorityHigh, Confidence: 0.95, Reason: "WSJ staff address format"},
			},
		},
		{
			Domain: "washingtonpost.com",
			PersonalPatterns: []Rule{
				{Pattern: `^[a-z]+\.[a-z]+@`, Type: domain.EmailPersonal, Priority: domain.PriorityHigh, Confidence: 0.9, Reason: "Post staff address format"},
			},
		},
		{
			Domain: "theguardian.com",
			PersonalPatterns: []Rule{
				{Pattern: `^[a-z]+\.[a-z]+@`, Type: domain.EmailPersonal, Priority: domain.PriorityHigh, Confidence: 0.9, Reason: "Guardian staff address format"},
			},
			AliasPatterns: []Rule{
				{Pattern: `^guardian\.readers@`, Type: domain.EmailAlias, Alias: domain.AliasContact, Priority: domain.PriorityLow, Confidence: 0.95, Reason: "Guardian readers inbox"},
			},
		},
		{
			Domain: "bbc.co.uk",
			PersonalPatterns: []Rule{
				{Pattern: `^[a-z]+\.[a-z]+@`, Type: domain.EmailPersonal, Priority: domain.PriorityHigh, Confidence: 0.9, Reason: "BBC staff address format"},
			},
			AliasPatterns: []Rule{
				{Pattern: `^haveyoursay@`, Type: domain.EmailAlias, Alias: domain.AliasContact, Priority: domain.PriorityLow, Confidence: 0.95, Reason: "BBC audience inbox"},
			},
		},
	}
}

// New builds an analyzer with the built-in tables.
func New() *Analyzer {
	a, err := NewWithRules(DefaultRules(), DefaultOverrides())
	if err != nil {
		// Built-in patterns are covered by tests; a compile failure here is
		// a programming error.
		panic(err)
	}
	return a
}

// NewWithRules builds an analyzer from externally supplied tables, typically
// loaded from configuration. Empty slices fall back to the defaults.
func NewWithRules(rules []Rule, overrides []DomainOverride) (*Analyzer, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if len(overrides) == 0 {
		overrides = DefaultOverrides()
	}

	a := &Analyzer{overrides: make(map[string]compiledOverride, len(overrides))}
	for _, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		a.rules = append(a.rules, cr)
	}

	for _, ov := range overrides {
		var co compiledOverride
		for _, r := range ov.PersonalPatterns {
			cr, err := compileRule(r)
			if err != nil {
				return nil, err
			}
			co.personal = append(co.personal, cr)
		}
		for _, r := range ov.AliasPatterns {
			cr, err := compileRule(r)
			if err != nil {
				return nil, err
			}
			co.aliases = append(co.aliases, cr)
		}
		a.overrides[strings.ToLower(ov.Domain)] = co
	}

	return a, nil
}

func compileRule(r Rule) (compiledRule, error) {
	expr, err := regexp.Compile(r.Pattern)
	if err != nil {
		return compiledRule{}, fmt.Errorf("compile email rule %q: %w", r.Pattern, err)
	}
	return compiledRule{expr: expr, rule: r}, nil
}

// AnalyzeEmail classifies one address. emailDomain is derived from the
// address when empty. The hint only improves suggestions, never the verdict.
func (a *Analyzer) AnalyzeEmail(email, emailDomain string, hint domain.EmailHint) domain.EmailAnalysis {
	email = strings.ToLower(strings.TrimSpace(email))
	local, derived := splitAddress(email)
	if emailDomain == "" {
		emailDomain = derived
	}
	emailDomain = strings.ToLower(emailDomain)

	analysis := a.matchRules(email)
	if analysis == nil {
		analysis = createUnknownAnalysis(local)
	}
	analysis.Email = email

	if refined, ok := a.applyOverride(email, emailDomain, analysis.Confidence); ok {
		refined.Email = email
		analysis = refined
	}

	analysis.IsDirectContact = analysis.EmailType == domain.EmailPersonal
	a.attachSuggestions(analysis, emailDomain, hint)
	return *analysis
}

// matchRules evaluates every rule and keeps the highest-confidence hit.
// The strict > comparison makes earlier rules win ties.
func (a *Analyzer) matchRules(email string) *domain.EmailAnalysis {
	var best *compiledRule
	for i := range a.rules {
		cr := &a.rules[i]
		if !cr.expr.MatchString(email) {
			continue
		}
		if best == nil || cr.rule.Confidence > best.rule.Confidence {
			best = cr
		}
	}
	if best == nil {
		return nil
	}
	return analysisFromRule(best.rule)
}

func analysisFromRule(r Rule) *domain.EmailAnalysis {
	return &domain.EmailAnalysis{
		EmailType:  r.Type,
		AliasType:  r.Alias,
		Confidence: r.Confidence,
		Priority:   r.Priority,
		Reasoning:  r.Reason,
	}
}

// createUnknownAnalysis is the fallback when no pattern matches.
func createUnknownAnalysis(local string) *domain.EmailAnalysis {
	switch {
	case strings.Contains(local, ".") && len(local) > 3:
		return &domain.EmailAnalysis{
			EmailType:  domain.EmailPersonal,
			Confidence: 0.6,
			Priority:   domain.PriorityMedium,
			Reasoning:  "dotted local part suggests a personal address",
		}
	case len(local) < 4 || isAllDigits(local):
		return &domain.EmailAnalysis{
			EmailType:  domain.EmailGeneric,
			Confidence: 0.7,
			Priority:   domain.PriorityLow,
			Reasoning:  "short or numeric local part suggests a generic inbox",
		}
	default:
		return &domain.EmailAnalysis{
			EmailType:  domain.EmailUnknown,
			Confidence: 0.3,
			Priority:   domain.PriorityLow,
			Reasoning:  "no classification pattern matched",
		}
	}
}

// applyOverride checks the per-outlet tables; the override wins outright only
// when its confidence beats the general match.
func (a *Analyzer) applyOverride(email, emailDomain string, current float64) (*domain.EmailAnalysis, bool) {
	ov, ok := a.overrides[emailDomain]
	if !ok {
		return nil, false
	}

	var best *compiledRule
	for _, set := range [][]compiledRule{ov.personal, ov.aliases} {
		for i := range set {
			cr := &set[i]
			if !cr.expr.MatchString(email) {
				continue
			}
			if best == nil || cr.rule.Confidence > best.rule.Confidence {
				best = cr
			}
		}
	}

	if best == nil || best.rule.Confidence <= current {
		return nil, false
	}
	return analysisFromRule(best.rule), true
}

func (a *Analyzer) attachSuggestions(analysis *domain.EmailAnalysis, emailDomain string, hint domain.EmailHint) {
	if analysis.EmailType != domain.EmailAlias {
		return
	}

	s := &domain.EmailSuggestions{
		ContactMethod: "find a direct personal address before pitching",
		Notes:         "alias inboxes are shared and triaged; response rates are low",
	}
	if hint.ContactName != "" && emailDomain != "" {
		guesses := guessPersonalEmails(hint.ContactName, emailDomain)
		if len(guesses) > 3 {
			guesses = guesses[:3]
		}
		s.AlternativeEmails = guesses
	}
	analysis.Suggestions = s
}

// guessPersonalEmails generates six candidate permutations from a name; the
// caller keeps the first three.
func guessPersonalEmails(name, emailDomain string) []string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) < 2 {
		return nil
	}
	first, last := fields[0], fields[len(fields)-1]
	if first == "" || last == "" {
		return nil
	}

	return []string{
		fmt.Sprintf("%s.%s@%s", first, last, emailDomain),
		fmt.Sprintf("%s@%s", first, emailDomain),
		fmt.Sprintf("%c.%s@%s", first[0], last, emailDomain),
		fmt.Sprintf("%s%s@%s", first, last, emailDomain),
		fmt.Sprintf("%s_%s@%s", first, last, emailDomain),
		fmt.Sprintf("%s.%s@%s", last, first, emailDomain),
	}
}

// ScoreEmail folds confidence, priority, and type into one outreach score.
func (a *Analyzer) ScoreEmail(analysis domain.EmailAnalysis) float64 {
	score := analysis.Confidence * 100

	switch analysis.Priority {
	case domain.PriorityHigh:
		score *= 1.5
	case domain.PriorityLow:
		score *= 0.5
	}

	switch analysis.EmailType {
	case domain.EmailPersonal:
		score += 50
	case domain.EmailAlias:
		switch analysis.AliasType {
		case domain.AliasPress:
			score += 30
		case domain.AliasTips:
			score += 20
		default:
			score += 10
		}
	case domain.EmailDepartment:
		score += 15
	case domain.EmailGeneric:
		score -= 20
	case domain.EmailUnknown:
		score -= 30
	}

	if score < 0 {
		return 0
	}
	return score
}

// RankedEmail pairs an address with its analysis and score.
type RankedEmail struct {
	Email    string
	Analysis domain.EmailAnalysis
	Score    float64
}

// RankEmailsByPriority classifies a batch and sorts it best-first.
func (a *Analyzer) RankEmailsByPriority(emails []string) []RankedEmail {
	ranked := make([]RankedEmail, 0, len(emails))
	for _, e := range emails {
		analysis := a.AnalyzeEmail(e, "", domain.EmailHint{})
		ranked = append(ranked, RankedEmail{
			Email:    e,
			Analysis: analysis,
			Score:    a.ScoreEmail(analysis),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

var addressExpr = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail runs structural checks only; it never classifies.
func ValidateEmail(email string) domain.EmailValidation {
	v := domain.EmailValidation{IsValid: true}
	email = strings.TrimSpace(email)

	if !addressExpr.MatchString(email) {
		v.IsValid = false
		v.Issues = append(v.Issues, "address is not well-formed")
		return v
	}

	local, emailDomain := splitAddress(email)
	if len(local) > 64 {
		v.IsValid = false
		v.Issues = append(v.Issues, "local part exceeds 64 characters")
	}
	if len(emailDomain) > 253 {
		v.IsValid = false
		v.Issues = append(v.Issues, "domain exceeds 253 characters")
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		v.IsValid = false
		v.Issues = append(v.Issues, "local part has a leading or trailing dot")
	}
	if strings.Contains(email, "..") {
		v.IsValid = false
		v.Issues = append(v.Issues, "address contains consecutive dots")
	}
	if strings.HasPrefix(strings.ToLower(local), "noreply") || strings.HasPrefix(strings.ToLower(local), "no-reply") {
		v.Suggestions = append(v.Suggestions, "no-reply addresses do not accept mail; find another contact")
	}

	return v
}

func splitAddress(email string) (local, emailDomain string) {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email, ""
	}
	return email[:at], email[at+1:]
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
