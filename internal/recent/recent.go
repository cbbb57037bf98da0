// Package recent keeps the last few assessed roles so they can be revisited
// and compared.
package recent

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spigell/fitcheck/internal/fit"
)

const (
	// DefaultMax is how many roles are kept.
	DefaultMax = 5

	maxLabelLength = 80
	untitledLabel  = "Untitled role"
)

var (
	now   = time.Now
	newID = func() string { return uuid.NewString() }
)

// Role is one assessed job description.
type Role struct {
	ID             string      `json:"id"`
	Label          string      `json:"label"`
	JobDescription string      `json:"jobDescription"`
	Fit            *fit.Result `json:"fit"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Entry is what callers provide when saving a role.
type Entry struct {
	Label          string
	JobDescription string
	Fit            *fit.Result
}

// Store persists recent roles, newest first.
type Store interface {
	List(ctx context.Context) ([]Role, error)
	Add(ctx context.Context, entry Entry) (Role, error)
}

// NewRole stamps an entry with an id and creation time. An empty label is
// derived from the job description.
func NewRole(entry Entry) Role {
	label := strings.TrimSpace(entry.Label)
	if label == "" {
		label = Label(entry.JobDescription)
	}

	return Role{
		ID:             newID(),
		Label:          label,
		JobDescription: entry.JobDescription,
		Fit:            entry.Fit,
		CreatedAt:      now().UTC(),
	}
}

// Prepend puts role in front of roles, dropping any earlier role with the same
// trimmed job description, and keeps at most limit entries.
func Prepend(roles []Role, role Role, limit int) []Role {
	if limit <= 0 {
		limit = DefaultMax
	}

	key := strings.TrimSpace(role.JobDescription)
	next := make([]Role, 0, len(roles)+1)
	next = append(next, role)
	for _, existing := range roles {
		if strings.TrimSpace(existing.JobDescription) == key {
			continue
		}
		next = append(next, existing)
	}

	if len(next) > limit {
		next = next[:limit]
	}
	return next
}

// Label returns the first non-empty line of a job description, shortened to
// 80 characters.
func Label(jobDescription string) string {
	for _, line := range strings.Split(jobDescription, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > maxLabelLength {
			runes := []rune(line)
			return string(runes[:maxLabelLength-3]) + "..."
		}
		return line
	}
	return untitledLabel
}

// DisplayLabel hides the job title in demo mode, replacing it with the
// position (zero-based index) and fit level.
func DisplayLabel(role Role, index int, demo bool) string {
	if !demo {
		return role.Label
	}
	return fmt.Sprintf("Role #%d (%s)", index+1, fitLabel(levelOf(role)))
}

func levelOf(role Role) fit.Level {
	if role.Fit == nil {
		return ""
	}
	switch role.Fit.Fit {
	case fit.LevelStrong, fit.LevelModerate, fit.LevelWeak:
		return role.Fit.Fit
	default:
		return ""
	}
}

func fitLabel(level fit.Level) string {
	switch level {
	case fit.LevelStrong:
		return "Strong fit"
	case fit.LevelModerate:
		return "Moderate fit"
	case fit.LevelWeak:
		return "Weak fit"
	default:
		return "Fit unknown"
	}
}
