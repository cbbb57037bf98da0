package fit

import (
	"testing"
)

func TestCorrectorLevel(t *testing.T) {
	c := NewCorrector(nil, nil)
	profileText := `{"skills":{"frontend":["react","typescript"]},"summary":"node.js apis"}`

	tests := []struct {
		name  string
		text  string
		level EvidenceLevel
		want  EvidenceLevel
	}{
		{name: "none is never changed", text: "React", level: EvidenceNone, want: EvidenceNone},
		{name: "tech term present", text: "Expert React developer", level: EvidenceMatch, want: EvidenceMatch},
		{name: "tech term missing", text: "Angular experience", level: EvidenceMatch, want: EvidenceNone},
		{name: "partial downgraded when term missing", text: "Python scripting", level: EvidencePartial, want: EvidenceNone},
		{name: "all terms must be present", text: "React and Angular", level: EvidencePartial, want: EvidenceNone},
		{name: "hard constraint missing", text: "Active Top Secret Clearance", level: EvidenceMatch, want: EvidenceNone},
		{name: "no listed terms", text: "Strong communication", level: EvidencePartial, want: EvidencePartial},
		{name: "case insensitive requirement", text: "NODE.JS services", level: EvidenceMatch, want: EvidenceMatch},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Level(tt.text, profileText, tt.level); got != tt.want {
				t.Fatalf("Level(%q, %s) = %s, want %s", tt.text, tt.level, got, tt.want)
			}
		})
	}
}

func TestCorrectorNeverUpgrades(t *testing.T) {
	c := NewCorrector(nil, nil)
	texts := []string{"React", "Security clearance", "Communication", "Golang", "php"}
	profiles := []string{"", "react security clearance golang php communication"}
	levels := []EvidenceLevel{EvidenceMatch, EvidencePartial, EvidenceNone}

	for _, text := range texts {
		for _, profileText := range profiles {
			for _, level := range levels {
				got := c.Level(text, profileText, level)
				if level == EvidenceNone && got != EvidenceNone {
					t.Fatalf("upgraded none to %s for %q", got, text)
				}
				if level != EvidenceMatch && got == EvidenceMatch {
					t.Fatalf("upgraded %s to match for %q", level, text)
				}
			}
		}
	}
}

func TestCorrectorApply(t *testing.T) {
	c := NewCorrector([]string{" Rust "}, []string{"", "Clearance Level 3"})
	reqs := []RequirementMatch{
		{ID: "a", Text: "Rust services", Importance: ImportanceCore, EvidenceLevel: EvidenceMatch, Evidence: "x"},
		{ID: "b", Text: "Clearance level 3", Importance: ImportanceNice, EvidenceLevel: EvidencePartial},
		{ID: "c", Text: "Team player", Importance: ImportanceNice, EvidenceLevel: EvidenceMatch},
	}

	got, downgraded := c.Apply(reqs, "Team Player")
	if downgraded != 2 {
		t.Fatalf("expected 2 downgrades, got %d", downgraded)
	}
	if got[0].EvidenceLevel != EvidenceNone || got[1].EvidenceLevel != EvidenceNone || got[2].EvidenceLevel != EvidenceMatch {
		t.Fatalf("unexpected levels: %+v", got)
	}
	if got[0].Text != "Rust services" || got[0].Importance != ImportanceCore || got[0].Evidence != "x" {
		t.Fatalf("corrector must only touch evidence level: %+v", got[0])
	}
	if reqs[0].EvidenceLevel != EvidenceMatch {
		t.Fatalf("input slice must not be modified")
	}
}
