package fit

import "strings"

// DefaultTechTerms are technology names whose presence in a requirement
// demands a literal mention in the profile.
var DefaultTechTerms = []string{
	"java",
	"spring boot",
	"kubernetes",
	"go",
	"golang",
	"python",
	"react",
	"angular",
	"node.js",
	"nodejs",
	"php",
}

// DefaultHardConstraints are eligibility phrases that cannot be inferred.
var DefaultHardConstraints = []string{
	"top secret clearance",
	"ts/sci",
	"secret clearance",
	"security clearance",
	"us citizenship",
	"u.s. citizenship",
	"active clearance",
	"bachelor's degree",
	"bachelors degree",
	"master's degree",
	"masters degree",
	"certification required",
	"required certification",
}

// Corrector downgrades evidence the profile does not literally back up.
// It never upgrades a level.
type Corrector struct {
	techTerms       []string
	hardConstraints []string
}

// NewCorrector returns a corrector using the default term lists extended
// with the given extras. Blank extras are ignored.
func NewCorrector(extraTech, extraHard []string) *Corrector {
	return &Corrector{
		techTerms:       mergeTerms(DefaultTechTerms, extraTech),
		hardConstraints: mergeTerms(DefaultHardConstraints, extraHard),
	}
}

// Level returns the corrected evidence level for one requirement.
// profileText must already be lowercased.
func (c *Corrector) Level(requirementText, profileText string, level EvidenceLevel) EvidenceLevel {
	if level == EvidenceNone {
		return level
	}

	text := strings.ToLower(requirementText)
	if !mentionsAll(profileText, termsIn(text, c.techTerms)) {
		return EvidenceNone
	}
	if !mentionsAll(profileText, termsIn(text, c.hardConstraints)) {
		return EvidenceNone
	}
	return level
}

// Apply returns a corrected copy of reqs and the number of downgrades.
func (c *Corrector) Apply(reqs []RequirementMatch, profileText string) ([]RequirementMatch, int) {
	profileText = strings.ToLower(profileText)

	corrected := make([]RequirementMatch, len(reqs))
	downgraded := 0
	for i, req := range reqs {
		level := c.Level(req.Text, profileText, req.EvidenceLevel)
		if level != req.EvidenceLevel {
			downgraded++
		}
		req.EvidenceLevel = level
		corrected[i] = req
	}
	return corrected, downgraded
}

func termsIn(text string, terms []string) []string {
	found := make([]string, 0)
	for _, term := range terms {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

func mentionsAll(profileText string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(profileText, term) {
			return false
		}
	}
	return true
}

func mergeTerms(base, extra []string) []string {
	merged := append([]string{}, base...)
	for _, term := range extra {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			merged = append(merged, term)
		}
	}
	return merged
}
