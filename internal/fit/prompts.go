package fit

import (
	_ "embed"
	"strings"

	"github.com/spigell/fitcheck/internal/profile"
)

//go:embed prompts/system.md
var systemPromptTemplate string

//go:embed prompts/user.md
var userPromptTemplate string

const noFactsLine = "- No additional derived facts available; rely on the profile JSON."

// BuildPrompts renders the requirement-extraction prompt pair.
func BuildPrompts(jobDescription string, p *profile.Profile, facts []string) (system, user string) {
	factsSection := noFactsLine
	if len(facts) > 0 {
		factsSection = "- " + strings.Join(facts, "\n- ")
	}

	user = strings.NewReplacer(
		"{{PROFILE_JSON}}", profile.JSON(p),
		"{{FACTS}}", factsSection,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(userPromptTemplate)

	return strings.TrimSpace(systemPromptTemplate), strings.TrimSpace(user)
}
