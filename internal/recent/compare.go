package recent

import (
	"fmt"
	"strings"

	"github.com/spigell/fitcheck/internal/fit"
)

// Summary counts recent roles per fit level and points at the best match.
type Summary struct {
	Total     int   `json:"total"`
	Strong    int   `json:"strong"`
	Moderate  int   `json:"moderate"`
	Weak      int   `json:"weak"`
	Unknown   int   `json:"unknown"`
	BestMatch *Role `json:"bestMatch,omitempty"`
}

// Compare summarises roles. The best match is the first strong role, else the
// first moderate one, else the first weak one.
func Compare(roles []Role) Summary {
	summary := Summary{Total: len(roles)}

	for _, role := range roles {
		switch levelOf(role) {
		case fit.LevelStrong:
			summary.Strong++
		case fit.LevelModerate:
			summary.Moderate++
		case fit.LevelWeak:
			summary.Weak++
		default:
			summary.Unknown++
		}
	}

	for _, level := range []fit.Level{fit.LevelStrong, fit.LevelModerate, fit.LevelWeak} {
		if best := firstWithLevel(roles, level); best != nil {
			summary.BestMatch = best
			break
		}
	}

	return summary
}

// String renders the summary as one line of counts plus the best match.
func (s Summary) String() string {
	if s.Total == 0 {
		return "No recent roles yet."
	}

	counts := make([]string, 0, 4)
	for _, c := range []struct {
		n    int
		name string
	}{
		{s.Strong, "strong"},
		{s.Moderate, "moderate"},
		{s.Weak, "weak"},
		{s.Unknown, "unknown"},
	} {
		if c.n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", c.n, c.name))
		}
	}

	out := fmt.Sprintf("Roles evaluated: %d (%s)", s.Total, strings.Join(counts, ", "))
	if s.BestMatch != nil {
		out += fmt.Sprintf("\nBest match so far: %s (%s)", s.BestMatch.Label, fitLabel(levelOf(*s.BestMatch)))
	}
	return out
}

func firstWithLevel(roles []Role, level fit.Level) *Role {
	for i := range roles {
		if levelOf(roles[i]) == level {
			role := roles[i]
			return &role
		}
	}
	return nil
}
