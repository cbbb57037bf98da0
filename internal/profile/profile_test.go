package profile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadJSONFixture(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "profile.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Alex Rivera" || len(p.Experience) != 1 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Preferences.Compensation.MinBaseSalaryUSD == nil || *p.Preferences.Compensation.MinBaseSalaryUSD != 90000 {
		t.Fatalf("expected salary to be decoded")
	}
	if got := p.Experience[0].Key(); got != "Acme|Senior Frontend Engineer|2021-03" {
		t.Fatalf("unexpected key %q", got)
	}
	if !p.Experience[0].Ongoing() {
		t.Fatalf("expected empty end to mean ongoing")
	}
}

func TestLoadYAMLEnvelope(t *testing.T) {
	p, err := Load(filepath.Join("testdata", "profile.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Sam Lee" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
	if p.Skills["infrastructureAndOps"][0] != "Kubernetes" {
		t.Fatalf("unexpected skills %v", p.Skills)
	}
}

func TestParseJSONEnvelope(t *testing.T) {
	p := &Profile{Name: "A", Headline: "B", Summary: "C"}
	data, err := MarshalExport(p, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"exportedAt": "2025-01-02T03:04:05Z"`) {
		t.Fatalf("unexpected export: %s", data)
	}

	parsed, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(parsed, p) {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}

	_, err = ParseJSON([]byte(`{"schemaVersion":"candidateProfile.v0","profile":{}}`))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}

	if _, err := ParseJSON([]byte(`not json`)); err == nil {
		t.Fatalf("expected invalid JSON error")
	}
}

func TestValidate(t *testing.T) {
	p := &Profile{
		Name:     "  ",
		Headline: "Engineer",
		Summary:  "",
		Experience: []Experience{
			{Company: "Acme", Start: "2020"},
		},
	}

	err := Validate(p)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	want := []string{"Name", "Summary", "Experience[0].Role"}
	if !reflect.DeepEqual(verr.Fields, want) {
		t.Fatalf("unexpected fields %v", verr.Fields)
	}

	if err := Validate(&Profile{Name: " A ", Headline: "B", Summary: "C"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(nil); err == nil {
		t.Fatalf("expected error for nil profile")
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(`{"name":"A"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestText(t *testing.T) {
	p := &Profile{Name: "Alex", Skills: map[string][]string{"frontend": {"React"}}}
	text := Text(p)
	if !strings.Contains(text, `"react"`) || strings.Contains(text, "React") {
		t.Fatalf("expected lowercased JSON, got %s", text)
	}
}
