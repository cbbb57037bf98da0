package profile

import (
	"encoding/json"
	"strings"
)

// JSON renders p as indented JSON for prompts.
func JSON(p *Profile) string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// Text is the lowercased serialised profile used for literal term checks.
func Text(p *Profile) string {
	return strings.ToLower(JSON(p))
}
