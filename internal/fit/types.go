// Package fit turns a job description and a candidate profile into a
// deterministic fit verdict. The LLM maps requirements to evidence; every
// decision after that is made by plain code.
package fit

// Importance separates must-have requirements from the rest.
type Importance string

const (
	ImportanceCore Importance = "core"
	ImportanceNice Importance = "nice"
)

// EvidenceLevel is how strongly the profile supports a requirement.
type EvidenceLevel string

const (
	EvidenceMatch   EvidenceLevel = "match"
	EvidencePartial EvidenceLevel = "partial"
	EvidenceNone    EvidenceLevel = "none"
)

// Level is the overall verdict bucket.
type Level string

const (
	LevelStrong   Level = "strong"
	LevelModerate Level = "moderate"
	LevelWeak     Level = "weak"
)

// RequirementMatch is one requirement extracted from the job description.
// Only the corrector may change EvidenceLevel after construction.
type RequirementMatch struct {
	ID            string        `json:"id"`
	Text          string        `json:"text"`
	Importance    Importance    `json:"importance"`
	EvidenceLevel EvidenceLevel `json:"evidenceLevel"`
	Evidence      string        `json:"evidence,omitempty"`
}

// ParseStage records which parsing attempt produced the requirements.
type ParseStage string

const ParseStageFirst ParseStage = "first"

// Debug carries raw model output when the caller asks for it.
type Debug struct {
	ParseStage       ParseStage `json:"parseStage"`
	RawFirstResponse string     `json:"rawFirstResponse"`
}

// Result is the outcome of one assessment.
type Result struct {
	Fit          Level              `json:"fit"`
	Summary      string             `json:"summary"`
	Strengths    []string           `json:"strengths"`
	Gaps         []string           `json:"gaps"`
	Verdict      string             `json:"verdict"`
	Requirements []RequirementMatch `json:"requirements"`
	Debug        *Debug             `json:"debug,omitempty"`
}
