// Package freelancer classifies contacts as staff or freelance from their
// cross-outlet byline history.
package freelancer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mediacontacts/internal/domain"
	"mediacontacts/internal/ports"
)

const (
	activeWindow = 180 * 24 * time.Hour
	staleWindow  = 365 * 24 * time.Hour

	multiOutletScore  = 0.5
	twoOutletScore    = 0.3
	spreadShareScore  = 0.2
	bioMarkerScore    = 0.3
	freelanceVerdict  = 0.5
	topShareThreshold = 0.6
)

var bioMarkers = []string{"freelance", "freelancer", "contributor", "contributing writer", "words in"}

// Analyzer derives a FreelancerProfile from outlet and byline evidence.
// A zero-value Analyzer is usable; Now is swappable for tests.
type Analyzer struct {
	Now func() time.Time
}

var _ ports.FreelancerAnalyzer = (*Analyzer)(nil)

// New returns an analyzer using wall-clock time.
func New() *Analyzer {
	return &Analyzer{}
}

// AnalyzeFreelancer scores freelance-vs-staff signals and derives a contact
// strategy. It never fails; thin histories produce low-confidence profiles.
func (a *Analyzer) AnalyzeFreelancer(input domain.FreelancerInput) domain.FreelancerProfile {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}

	activity := summarizeOutlets(input.Outlets)
	total := 0
	for _, o := range activity {
		total += o.BylineCount
	}

	profile := domain.FreelancerProfile{Outlets: activity}
	if len(activity) == 0 {
		profile.Confidence = 0.2
		profile.ContactStrategy = "no byline history; verify the contact manually before outreach"
		profile.Warnings = append(profile.Warnings, "no outlets on record")
		return profile
	}

	profile.PrimaryOutlet = activity[0].Name

	score := 0.0
	switch {
	case len(activity) >= 3:
		score += multiOutletScore
	case len(activity) == 2:
		score += twoOutletScore
	}

	if total > 0 {
		topShare := float64(activity[0].BylineCount) / float64(total)
		if topShare < topShareThreshold {
			score += spreadShareScore
		}
	}

	bio := strings.ToLower(input.Bio)
	for _, marker := range bioMarkers {
		if strings.Contains(bio, marker) {
			score += bioMarkerScore
			break
		}
	}

	var lastByline time.Time
	active := 0
	for _, o := range activity {
		if o.LastBylineAt.After(lastByline) {
			lastByline = o.LastBylineAt
		}
		if !o.LastBylineAt.IsZero() && now.Sub(o.LastBylineAt) <= activeWindow {
			active++
		}
	}
	profile.RecentActivity = domain.RecentActivity{ActiveOutlets: active, LastBylineAt: lastByline}

	profile.IsFreelancer = score >= freelanceVerdict
	profile.Confidence = clamp(0.4 + score*0.6)

	if profile.IsFreelancer {
		profile.ContactStrategy = fmt.Sprintf(
			"pitch directly; %s writes for %d outlets and an outlet inbox is unlikely to reach them",
			displayName(input.Name), len(activity))
	} else {
		profile.ContactStrategy = fmt.Sprintf("reach via %s, their primary outlet", profile.PrimaryOutlet)
	}

	if lastByline.IsZero() {
		profile.Warnings = append(profile.Warnings, "bylines carry no publication dates")
	} else if now.Sub(lastByline) > staleWindow {
		profile.Warnings = append(profile.Warnings, "no bylines in the last year; contact may have moved on")
	}

	return profile
}

// summarizeOutlets orders outlets by byline count, then recency.
func summarizeOutlets(outlets []domain.ContactOutlet) []domain.OutletActivity {
	activity := make([]domain.OutletActivity, 0, len(outlets))
	for _, o := range outlets {
		oa := domain.OutletActivity{Name: o.Name, BylineCount: len(o.Bylines)}
		for _, b := range o.Bylines {
			if b.PublishedAt.After(oa.LastBylineAt) {
				oa.LastBylineAt = b.PublishedAt
			}
		}
		activity = append(activity, oa)
	}

	sort.SliceStable(activity, func(i, j int) bool {
		if activity[i].BylineCount != activity[j].BylineCount {
			return activity[i].BylineCount > activity[j].BylineCount
		}
		return activity[i].LastBylineAt.After(activity[j].LastBylineAt)
	})
	return activity
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "this contact"
	}
	return name
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
