package fit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const jobDescription = "Senior Frontend Engineer. 5+ years React and TypeScript, Top Secret Clearance required. Remote within the US."

type scriptedProvider struct {
	name    string
	text    string
	err     error
	lastReq ai.Request
	calls   int
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Generate(_ context.Context, req ai.Request) (*ai.Response, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &ai.Response{Text: p.text}, nil
}

type fakeResolver struct {
	chain    ai.Chain
	err      error
	defaults ai.Defaults
	settings *ai.Settings
}

func (r *fakeResolver) Resolve(_ context.Context, settings *ai.Settings) (ai.Chain, error) {
	r.settings = settings
	return r.chain, r.err
}

func (r *fakeResolver) Defaults() ai.Defaults { return r.defaults }

func testProfile() *profile.Profile {
	return &profile.Profile{
		Name:     "Alex Rivera",
		Headline: "Senior Frontend Engineer",
		Summary:  "Builds SPAs.",
		Skills:   map[string][]string{"frontend": {"React", "TypeScript"}},
	}
}

func newTestAssessor(provider ai.Provider, l *zap.Logger) (*Assessor, *fakeResolver) {
	resolver := &fakeResolver{
		chain:    ai.Chain{Primary: provider},
		defaults: ai.Defaults{Model: "test-model", Temperature: 0.2},
	}
	return NewAssessor(resolver, ai.NewGateway(l, 0), nil, l), resolver
}

func TestAssessForcesMissingHardConstraintToNone(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	provider := &scriptedProvider{name: "mock", text: "Sure! Here is the mapping:\n```json\n" + `[
		{"id":"react-ts","text":"5+ years React and TypeScript","importance":"core","evidenceLevel":"match","evidence":"frontend skills"},
		{"text":"Top Secret Clearance","importance":"required","evidenceLevel":"strong"},
		{"text":"Remote within the US","importance":"nice","evidenceLevel":"partial"}
	]` + "\n```"}

	assessor, _ := newTestAssessor(provider, zap.New(core))
	result, err := assessor.Assess(context.Background(), Input{
		JobDescription: jobDescription,
		Profile:        testProfile(),
		Settings:       &ai.Settings{Debug: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	levels := map[string]EvidenceLevel{}
	for _, r := range result.Requirements {
		levels[r.ID] = r.EvidenceLevel
	}
	if levels["react-ts"] != EvidenceMatch {
		t.Fatalf("expected React/TypeScript to stay match, got %s", levels["react-ts"])
	}
	if levels["req-top-secret-clearance"] != EvidenceNone {
		t.Fatalf("expected clearance forced to none, got %s", levels["req-top-secret-clearance"])
	}

	if result.Fit != LevelModerate {
		t.Fatalf("expected moderate fit, got %s", result.Fit)
	}
	if len(result.Gaps) != 1 || !strings.Contains(result.Gaps[0], "Top Secret Clearance") {
		t.Fatalf("unexpected gaps: %v", result.Gaps)
	}
	if result.Debug == nil || result.Debug.ParseStage != ParseStageFirst || result.Debug.RawFirstResponse != provider.text {
		t.Fatalf("expected debug payload, got %+v", result.Debug)
	}

	if !strings.Contains(provider.lastReq.User, "- Candidate has significant experience building SPAs with React.") {
		t.Fatalf("expected derived facts in user prompt")
	}
	if !strings.Contains(provider.lastReq.User, jobDescription) {
		t.Fatalf("expected job description in user prompt")
	}
	if provider.lastReq.Model != "test-model" || provider.lastReq.TemperatureOr(0) != 0.2 {
		t.Fatalf("unexpected request defaults: %+v", provider.lastReq)
	}

	corrections := observed.FilterMessage("applied literal evidence rules").All()
	if len(corrections) != 1 || corrections[0].ContextMap()["downgraded"] != int64(1) {
		t.Fatalf("expected one correction log with downgraded=1, got %+v", corrections)
	}
	normalized := observed.FilterMessage("normalized requirements").All()
	if len(normalized) != 1 || normalized[0].ContextMap()["kept"] != int64(3) {
		t.Fatalf("expected normalization stats, got %+v", normalized)
	}
}

func TestAssessRejectsShortJobDescription(t *testing.T) {
	provider := &scriptedProvider{name: "mock", text: "[]"}
	assessor, _ := newTestAssessor(provider, nil)

	_, err := assessor.Assess(context.Background(), Input{JobDescription: "   too short   ", Profile: testProfile()})
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
	if err.Error() != "Please paste a reasonably complete job description." {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if provider.calls != 0 {
		t.Fatalf("expected no provider calls")
	}
}

func TestAssessRejectsInvalidProfile(t *testing.T) {
	provider := &scriptedProvider{name: "mock", text: "[]"}
	assessor, _ := newTestAssessor(provider, nil)

	_, err := assessor.Assess(context.Background(), Input{JobDescription: jobDescription, Profile: &profile.Profile{Name: "A"}})
	if Classify(err) != KindInput {
		t.Fatalf("expected input error, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("expected no provider calls")
	}
}

func TestAssessMalformedOutput(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		stage string
	}{
		{name: "no json", text: "LLM stub (mock): plug in a real model provider.", stage: StageExtract},
		{name: "object instead of array", text: `{"requirements": []}`, stage: StageNormalize},
		{name: "no valid items", text: `[{"text":"x","importance":"maybe","evidenceLevel":"match"}]`, stage: StageNormalize},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assessor, _ := newTestAssessor(&scriptedProvider{name: "mock", text: tt.text}, nil)
			_, err := assessor.Assess(context.Background(), Input{JobDescription: jobDescription, Profile: testProfile()})

			var stageErr *StageError
			if !errors.As(err, &stageErr) || stageErr.Stage != tt.stage {
				t.Fatalf("expected %s StageError, got %v", tt.stage, err)
			}
			if !errors.Is(err, ErrInvalidRequirements) {
				t.Fatalf("expected ErrInvalidRequirements in chain")
			}
			if !strings.HasPrefix(err.Error(), "LLM did not return valid requirements JSON") {
				t.Fatalf("unexpected message %q", err.Error())
			}
			if Classify(err) != KindMalformed {
				t.Fatalf("expected malformed kind")
			}
		})
	}
}

func TestAssessPropagatesProviderAndConfigErrors(t *testing.T) {
	assessor, _ := newTestAssessor(&scriptedProvider{name: "openai", err: errors.New("connection refused")}, nil)
	_, err := assessor.Assess(context.Background(), Input{JobDescription: jobDescription, Profile: testProfile()})
	if Classify(err) != KindProvider {
		t.Fatalf("expected provider kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "openai: connection refused") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	resolver := &fakeResolver{err: &ai.ConfigError{Provider: ai.ProviderOpenAI, Message: "missing OPENAI_API_KEY"}}
	_, err = NewAssessor(resolver, ai.NewGateway(nil, 0), nil, nil).Assess(context.Background(), Input{JobDescription: jobDescription, Profile: testProfile()})
	if Classify(err) != KindConfig {
		t.Fatalf("expected config kind, got %v", err)
	}
}

func TestAssessPassesSettingsToResolver(t *testing.T) {
	provider := &scriptedProvider{name: "mock", text: `[{"text":"Communication","importance":"core","evidenceLevel":"partial"}]`}
	assessor, resolver := newTestAssessor(provider, nil)

	temp := 0.9
	settings := &ai.Settings{Provider: ai.ProviderOllama, Model: "llama3.2", Temperature: &temp}
	result, err := assessor.Assess(context.Background(), Input{JobDescription: jobDescription, Profile: testProfile(), Settings: settings})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.settings != settings {
		t.Fatalf("expected settings to reach the resolver")
	}
	if provider.lastReq.Model != "llama3.2" || provider.lastReq.TemperatureOr(0) != 0.9 {
		t.Fatalf("unexpected request: %+v", provider.lastReq)
	}
	if result.Debug != nil {
		t.Fatalf("debug must be omitted unless requested")
	}
}
