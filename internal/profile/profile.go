// Package profile holds the candidate profile model, file loading,
// validation and the fact deriver used to ground prompts.
package profile

import "strings"

// Well-known skill buckets.
const (
	BucketFrontend      = "frontend"
	BucketTesting       = "testing"
	BucketDesignSystems = "designSystems"
	BucketAITools       = "aiTools"
)

// Profile is a structured candidate profile.
type Profile struct {
	Name          string              `json:"name" yaml:"name" validate:"required"`
	Headline      string              `json:"headline" yaml:"headline" validate:"required"`
	SubHeadline   string              `json:"subHeadline" yaml:"subHeadline"`
	Location      string              `json:"location" yaml:"location"`
	Summary       string              `json:"summary" yaml:"summary" validate:"required"`
	Preferences   Preferences         `json:"preferences" yaml:"preferences"`
	CoreStrengths []string            `json:"coreStrengths" yaml:"coreStrengths"`
	Skills        map[string][]string `json:"skills" yaml:"skills"`
	Experience    []Experience        `json:"experience" yaml:"experience" validate:"dive"`
	Stories       []Story             `json:"stories" yaml:"stories" validate:"dive"`
	Meta          *Meta               `json:"meta,omitempty" yaml:"meta,omitempty"`
}

type Preferences struct {
	RoleTitlesPreferred []string     `json:"roleTitlesPreferred" yaml:"roleTitlesPreferred"`
	RoleTitlesAvoid     []string     `json:"roleTitlesAvoid" yaml:"roleTitlesAvoid"`
	WorkMode            WorkMode     `json:"workMode" yaml:"workMode"`
	Compensation        Compensation `json:"compensation" yaml:"compensation"`
	DomainsPreferred    []string     `json:"domainsPreferred" yaml:"domainsPreferred"`
	DomainsAvoid        []string     `json:"domainsAvoid" yaml:"domainsAvoid"`
}

type WorkMode struct {
	RemoteOnly                  bool     `json:"remoteOnly" yaml:"remoteOnly"`
	RemoteRegions               []string `json:"remoteRegions" yaml:"remoteRegions"`
	WillingToTravelOccasionally bool     `json:"willingToTravelOccasionally" yaml:"willingToTravelOccasionally"`
	HybridRequired              bool     `json:"hybridRequired" yaml:"hybridRequired"`
}

type Compensation struct {
	MinBaseSalaryUSD          *float64 `json:"minBaseSalaryUsd,omitempty" yaml:"minBaseSalaryUsd,omitempty" validate:"omitempty,gte=0"`
	MinContractRateUSDPerHour *float64 `json:"minContractRateUsdPerHour,omitempty" yaml:"minContractRateUsdPerHour,omitempty" validate:"omitempty,gte=0"`
}

// Experience is one position. An empty End means the role is ongoing.
type Experience struct {
	Company    string   `json:"company" yaml:"company" validate:"required"`
	Role       string   `json:"role" yaml:"role" validate:"required"`
	Location   string   `json:"location" yaml:"location"`
	Start      string   `json:"start" yaml:"start" validate:"required"`
	End        string   `json:"end" yaml:"end"`
	Domain     string   `json:"domain" yaml:"domain"`
	Stack      []string `json:"stack" yaml:"stack"`
	Highlights []string `json:"highlights" yaml:"highlights"`
	Links      []Link   `json:"links,omitempty" yaml:"links,omitempty" validate:"dive"`
}

// Key identifies the experience for display purposes.
func (e Experience) Key() string {
	return e.Company + "|" + e.Role + "|" + e.Start
}

// Ongoing reports whether the position has no end date.
func (e Experience) Ongoing() bool {
	return strings.TrimSpace(e.End) == ""
}

type Link struct {
	Label string `json:"label" yaml:"label" validate:"required"`
	URL   string `json:"url" yaml:"url" validate:"required"`
}

type Story struct {
	ID        string   `json:"id" yaml:"id" validate:"required"`
	Title     string   `json:"title" yaml:"title" validate:"required"`
	Summary   string   `json:"summary" yaml:"summary" validate:"required"`
	Takeaways []string `json:"takeaways" yaml:"takeaways"`
}

type Meta struct {
	ProfileVersion string `json:"profileVersion,omitempty" yaml:"profileVersion,omitempty"`
	LastUpdated    string `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
}

// Normalize trims surrounding whitespace from the scalar text fields in place.
func (p *Profile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Headline = strings.TrimSpace(p.Headline)
	p.SubHeadline = strings.TrimSpace(p.SubHeadline)
	p.Location = strings.TrimSpace(p.Location)
	p.Summary = strings.TrimSpace(p.Summary)

	for i := range p.Experience {
		exp := &p.Experience[i]
		exp.Company = strings.TrimSpace(exp.Company)
		exp.Role = strings.TrimSpace(exp.Role)
		exp.Start = strings.TrimSpace(exp.Start)
		exp.End = strings.TrimSpace(exp.End)
	}
	for i := range p.Stories {
		story := &p.Stories[i]
		story.ID = strings.TrimSpace(story.ID)
		story.Title = strings.TrimSpace(story.Title)
		story.Summary = strings.TrimSpace(story.Summary)
	}
}
