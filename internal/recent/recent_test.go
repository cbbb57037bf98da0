package recent

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spigell/fitcheck/internal/fit"
)

func stubClock(t *testing.T) {
	t.Helper()

	origNow, origID := now, newID
	counter := 0
	now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	newID = func() string {
		counter++
		return fmt.Sprintf("role-%d", counter)
	}
	t.Cleanup(func() {
		now, newID = origNow, origID
	})
}

func roleWith(jd string, level fit.Level) Role {
	role := Role{Label: Label(jd), JobDescription: jd}
	if level != "" {
		role.Fit = &fit.Result{Fit: level}
	}
	return role
}

func TestLabel(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 81)

	cases := map[string]struct {
		in   string
		want string
	}{
		"first non-empty line": {in: "\n  \n  Senior Go Engineer  \nRemote", want: "Senior Go Engineer"},
		"exactly eighty":       {in: strings.Repeat("b", 80), want: strings.Repeat("b", 80)},
		"truncated":            {in: long, want: strings.Repeat("a", 77) + "..."},
		"empty":                {in: " \n\t", want: "Untitled role"},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := Label(tc.in); got != tc.want {
				t.Fatalf("Label() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPrependDedupsAndCaps(t *testing.T) {
	t.Parallel()

	var roles []Role
	for i := 0; i < 6; i++ {
		roles = Prepend(roles, roleWith(fmt.Sprintf("Job %d", i), fit.LevelWeak), DefaultMax)
	}

	if len(roles) != DefaultMax {
		t.Fatalf("expected %d roles, got %d", DefaultMax, len(roles))
	}
	if roles[0].JobDescription != "Job 5" || roles[4].JobDescription != "Job 1" {
		t.Fatalf("unexpected order: first %q last %q", roles[0].JobDescription, roles[4].JobDescription)
	}

	roles = Prepend(roles, roleWith("  Job 3\n", fit.LevelStrong), DefaultMax)
	if len(roles) != DefaultMax {
		t.Fatalf("expected dedup to keep %d roles, got %d", DefaultMax, len(roles))
	}
	if roles[0].Fit.Fit != fit.LevelStrong {
		t.Fatalf("expected re-added role first")
	}
	for _, role := range roles[1:] {
		if strings.TrimSpace(role.JobDescription) == "Job 3" {
			t.Fatalf("duplicate job description kept")
		}
	}
}

func TestNewRoleDerivesLabel(t *testing.T) {
	stubClock(t)

	role := NewRole(Entry{JobDescription: "Staff Engineer\nDetails"})
	if role.ID != "role-1" || role.Label != "Staff Engineer" {
		t.Fatalf("unexpected role %+v", role)
	}
	if !role.CreatedAt.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created at %v", role.CreatedAt)
	}

	role = NewRole(Entry{Label: " Custom ", JobDescription: "Staff Engineer"})
	if role.Label != "Custom" {
		t.Fatalf("expected explicit label, got %q", role.Label)
	}
}

func TestDisplayLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role Role
		want string
	}{
		{roleWith("A", fit.LevelStrong), "Role #1 (Strong fit)"},
		{roleWith("B", fit.LevelModerate), "Role #2 (Moderate fit)"},
		{roleWith("C", fit.LevelWeak), "Role #3 (Weak fit)"},
		{roleWith("D", ""), "Role #4 (Fit unknown)"},
	}

	for i, tc := range cases {
		if got := DisplayLabel(tc.role, i, true); got != tc.want {
			t.Fatalf("DisplayLabel() = %q, want %q", got, tc.want)
		}
	}

	if got := DisplayLabel(roleWith("Plain", fit.LevelWeak), 0, false); got != "Plain" {
		t.Fatalf("expected raw label outside demo mode, got %q", got)
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	roles := []Role{
		roleWith("Weak one", fit.LevelWeak),
		roleWith("Moderate one", fit.LevelModerate),
		roleWith("Unknown one", ""),
		roleWith("Moderate two", fit.LevelModerate),
	}

	summary := Compare(roles)
	if summary.Total != 4 || summary.Moderate != 2 || summary.Weak != 1 || summary.Unknown != 1 || summary.Strong != 0 {
		t.Fatalf("unexpected counts %+v", summary)
	}
	if summary.BestMatch == nil || summary.BestMatch.Label != "Moderate one" {
		t.Fatalf("unexpected best match %+v", summary.BestMatch)
	}

	want := "Roles evaluated: 4 (2 moderate, 1 weak, 1 unknown)\nBest match so far: Moderate one (Moderate fit)"
	if got := summary.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	if got := Compare(nil).String(); got != "No recent roles yet." {
		t.Fatalf("unexpected empty summary %q", got)
	}
	if Compare([]Role{roleWith("x", "")}).BestMatch != nil {
		t.Fatalf("expected no best match among unknown roles")
	}
}
