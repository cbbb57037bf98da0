package fit

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidRequirements is returned when model output cannot be turned into
// at least one valid requirement.
var ErrInvalidRequirements = errors.New("LLM did not return valid requirements JSON")

const maxSlugLength = 48

//go:embed requirements.schema.json
var requirementsSchemaJSON string

var requirementsSchema = mustCompileSchema(requirementsSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compiling requirements schema: %v", err))
	}
	return schema
}

var (
	fenceMarker = regexp.MustCompile("(?i)```(?:json)?")
	nonSlug     = regexp.MustCompile(`[^a-z0-9]+`)
)

// rawRequirement is one loosely-typed item as the model returned it.
type rawRequirement struct {
	ID            any `mapstructure:"id"`
	Text          any `mapstructure:"text"`
	Importance    any `mapstructure:"importance"`
	EvidenceLevel any `mapstructure:"evidenceLevel"`
	Evidence      any `mapstructure:"evidence"`
}

// NormalizeStats counts what normalisation kept and dropped.
type NormalizeStats struct {
	Returned int
	Kept     int
	Dropped  int
}

// NormalizeRequirements validates and canonicalises the decoded model output.
func NormalizeRequirements(value any) ([]RequirementMatch, error) {
	reqs, _, err := normalizeRequirements(value)
	return reqs, err
}

func normalizeRequirements(value any) ([]RequirementMatch, NormalizeStats, error) {
	var stats NormalizeStats

	items, ok := value.([]any)
	if !ok {
		return nil, stats, fmt.Errorf("%w: expected a JSON array, got %T", ErrInvalidRequirements, value)
	}
	stats.Returned = len(items)

	result := make([]RequirementMatch, 0, len(items))
	for index, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}

		var raw rawRequirement
		if err := mapstructure.Decode(record, &raw); err != nil {
			continue
		}

		text := asString(raw.Text)
		importance, okImportance := normalizeImportance(raw.Importance)
		level, okLevel := normalizeEvidenceLevel(raw.EvidenceLevel)
		if text == "" || !okImportance || !okLevel {
			continue
		}

		id := asString(raw.ID)
		if id == "" {
			id = stableID(text, index)
		}

		result = append(result, RequirementMatch{
			ID:            id,
			Text:          text,
			Importance:    importance,
			EvidenceLevel: level,
			Evidence:      asString(raw.Evidence),
		})
	}

	stats.Kept = len(result)
	stats.Dropped = stats.Returned - stats.Kept

	if err := validateRequirements(result); err != nil {
		return nil, stats, err
	}
	return result, stats, nil
}

func validateRequirements(reqs []RequirementMatch) error {
	res, err := requirementsSchema.Validate(gojsonschema.NewGoLoader(reqs))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequirements, err)
	}
	if res.Valid() {
		return nil
	}

	details := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		details = append(details, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequirements, strings.Join(details, "; "))
}

func normalizeImportance(value any) (Importance, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}

	switch Importance(s) {
	case ImportanceCore, ImportanceNice:
		return Importance(s), true
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "must", "required":
		return ImportanceCore, true
	case "optional", "preferred":
		return ImportanceNice, true
	}
	return "", false
}

func normalizeEvidenceLevel(value any) (EvidenceLevel, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}

	switch EvidenceLevel(s) {
	case EvidenceMatch, EvidencePartial, EvidenceNone:
		return EvidenceLevel(s), true
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no-evidence", "no evidence":
		return EvidenceNone, true
	case "full", "strong":
		return EvidenceMatch, true
	case "some":
		return EvidencePartial, true
	}
	return "", false
}

func asString(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return cleanText(s)
}

func cleanText(s string) string {
	s = fenceMarker.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

// stableID derives "req-<slug>" from text, or "req-<index+1>" when the slug is empty.
func stableID(text string, index int) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(text), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	if slug == "" {
		return "req-" + strconv.Itoa(index+1)
	}
	return "req-" + slug
}
