package fit

import "fmt"

const (
	strongThreshold   = 0.75
	moderateThreshold = 0.45
)

var verdicts = map[Level]string{
	LevelStrong:   "The candidate appears well-suited for this role and should be able to succeed with a normal onboarding period.",
	LevelModerate: "The candidate could be a good hire if the team is open to some ramp-up in the areas marked as gaps or partial matches.",
	LevelWeak:     "The candidate has relevant strengths but is missing several core requirements; they may be better suited for a different role.",
}

const noGapsVerdict = "No major gaps were identified beyond normal domain-specific ramp-up."

// Score returns the core coverage score, the core match and partial counts
// and the denominator used. The denominator is never zero.
func Score(reqs []RequirementMatch) (score float64, matched, partial, coreTotal int) {
	for _, req := range reqs {
		if req.Importance != ImportanceCore {
			continue
		}
		coreTotal++
		switch req.EvidenceLevel {
		case EvidenceMatch:
			matched++
		case EvidencePartial:
			partial++
		}
	}
	if coreTotal == 0 {
		coreTotal = 1
	}
	score = (float64(matched) + 0.5*float64(partial)) / float64(coreTotal)
	return score, matched, partial, coreTotal
}

// LevelFor maps a score onto a fit level. Lower bounds are inclusive.
func LevelFor(score float64) Level {
	switch {
	case score >= strongThreshold:
		return LevelStrong
	case score >= moderateThreshold:
		return LevelModerate
	default:
		return LevelWeak
	}
}

// ComputeFit derives the verdict from corrected requirements. It is pure.
func ComputeFit(reqs []RequirementMatch, candidateName string) *Result {
	score, matched, partial, coreTotal := Score(reqs)
	level := LevelFor(score)

	strengths := make([]string, 0, len(reqs))
	gaps := make([]string, 0)
	for _, req := range reqs {
		if req.EvidenceLevel == EvidenceMatch || req.EvidenceLevel == EvidencePartial {
			evidence := req.Evidence
			if evidence == "" {
				evidence = "see profile"
			}
			strengths = append(strengths, fmt.Sprintf("Matches: %s (%s)", req.Text, evidence))
		}
		if req.Importance == ImportanceCore && req.EvidenceLevel == EvidenceNone {
			gaps = append(gaps, fmt.Sprintf("Job requires: %s - profile shows no explicit evidence for this requirement.", req.Text))
		}
	}

	verdict := verdicts[level]
	if len(gaps) == 0 {
		verdict += " " + noGapsVerdict
	}

	return &Result{
		Fit: level,
		Summary: fmt.Sprintf(
			"Based on the mapped requirements for %s, the candidate matches %d/%d core requirements and partially aligns with %d. Overall this yields a %s fit for the role.",
			candidateName, matched, coreTotal, partial, level,
		),
		Strengths:    strengths,
		Gaps:         gaps,
		Verdict:      verdict,
		Requirements: append([]RequirementMatch{}, reqs...),
	}
}
