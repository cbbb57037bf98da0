package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SchemaVersion tags exported profile files.
const SchemaVersion = "candidateProfile.v1"

// ErrUnsupportedVersion is returned for export envelopes with another schema version.
var ErrUnsupportedVersion = fmt.Errorf("unsupported profile file, expected schemaVersion %q", SchemaVersion)

// Export is the envelope written when a profile is exported to a file.
type Export struct {
	SchemaVersion string   `json:"schemaVersion" yaml:"schemaVersion"`
	ExportedAt    string   `json:"exportedAt" yaml:"exportedAt"`
	Profile       *Profile `json:"profile" yaml:"profile"`
}

// Load reads a profile from a JSON or YAML file and validates it.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %q: %w", path, err)
	}

	var p *Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		p, err = ParseYAML(data)
	default:
		p, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing profile %q: %w", path, err)
	}

	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseJSON decodes a bare profile or an export envelope.
func ParseJSON(data []byte) (*Profile, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if rawVersion, ok := probe["schemaVersion"]; ok {
		var version string
		if err := json.Unmarshal(rawVersion, &version); err != nil || version != SchemaVersion {
			return nil, ErrUnsupportedVersion
		}

		var export Export
		if err := json.Unmarshal(data, &export); err != nil {
			return nil, fmt.Errorf("invalid profile envelope: %w", err)
		}
		if export.Profile == nil {
			return nil, errors.New("profile envelope has no profile")
		}
		return export.Profile, nil
	}

	var p Profile
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return &p, nil
}

// ParseYAML decodes a bare profile or an export envelope written as YAML.
func ParseYAML(data []byte) (*Profile, error) {
	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if version, ok := probe["schemaVersion"]; ok {
		if s, _ := version.(string); s != SchemaVersion {
			return nil, ErrUnsupportedVersion
		}
		var export Export
		if err := yaml.Unmarshal(data, &export); err != nil {
			return nil, fmt.Errorf("invalid profile envelope: %w", err)
		}
		if export.Profile == nil {
			return nil, errors.New("profile envelope has no profile")
		}
		return export.Profile, nil
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return &p, nil
}

// MarshalExport wraps p in an export envelope stamped with now.
func MarshalExport(p *Profile, now time.Time) ([]byte, error) {
	return json.MarshalIndent(Export{
		SchemaVersion: SchemaVersion,
		ExportedAt:    now.UTC().Format(time.RFC3339),
		Profile:       p,
	}, "", "  ")
}
