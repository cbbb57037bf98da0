package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/fit"
	"github.com/spigell/fitcheck/internal/metrics"
	"github.com/spigell/fitcheck/internal/recent"
)

type fakeAssessor struct {
	result *fit.Result
	err    error
	got    fit.Input
}

func (f *fakeAssessor) Assess(_ context.Context, in fit.Input) (*fit.Result, error) {
	f.got = in
	return f.result, f.err
}

type fakeModels struct{}

func (fakeModels) ListModels(_ context.Context, name ai.ProviderName) ([]string, error) {
	switch name {
	case ai.ProviderMock:
		return []string{"mock-model"}, nil
	case ai.ProviderCursor:
		return nil, &ai.ConfigError{Provider: ai.ProviderCursor, Message: "missing CURSOR_API_KEY"}
	}
	return nil, nil
}

const jobDescription = "Senior Frontend Engineer\nWe need React, TypeScript and a passion for design systems."

func newTestServer(t *testing.T, assessor *fakeAssessor) (*Server, recent.Store, *metrics.Metrics) {
	t.Helper()

	store := recent.NewFileStore(filepath.Join(t.TempDir(), "recent.json"), 0)
	m := metrics.New()
	s := New("", Deps{
		Assessor: assessor,
		Models:   fakeModels{},
		Recent:   store,
		Metrics:  m,
		Logger:   zaptest.NewLogger(t),
	})
	return s, store, m
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func assessBody(t *testing.T, save bool) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"jobDescription": jobDescription,
		"profile":        map[string]any{"name": "Alex", "headline": "Engineer", "summary": "Builds UIs"},
		"llmSettings":    map[string]any{"provider": "ollama", "debug": true},
		"save":           save,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func TestAssessSavesRecentRole(t *testing.T) {
	t.Parallel()

	assessor := &fakeAssessor{result: &fit.Result{Fit: fit.LevelStrong, Summary: "great"}}
	s, store, _ := newTestServer(t, assessor)

	rec := do(t, s.Handler(), http.MethodPost, "/assess", assessBody(t, true))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var got fit.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Fit != fit.LevelStrong {
		t.Fatalf("unexpected fit %q", got.Fit)
	}

	if assessor.got.Settings == nil || assessor.got.Settings.Provider != ai.ProviderOllama || !assessor.got.Settings.Debug {
		t.Fatalf("settings not passed through: %+v", assessor.got.Settings)
	}
	if assessor.got.Profile == nil || assessor.got.Profile.Name != "Alex" {
		t.Fatalf("profile not passed through: %+v", assessor.got.Profile)
	}

	roles, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roles) != 1 || roles[0].Label != "Senior Frontend Engineer" {
		t.Fatalf("unexpected recent roles %+v", roles)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/recent/compare", nil)
	var summary recent.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Total != 1 || summary.Strong != 1 || summary.BestMatch == nil {
		t.Fatalf("unexpected summary %+v", summary)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/metrics", nil)
	if !strings.Contains(rec.Body.String(), `fitcheck_assessments_total{fit="strong",outcome="ok"} 1`) {
		t.Fatalf("expected assessment metric, got:\n%s", rec.Body.String())
	}
}

func TestAssessWithoutSave(t *testing.T) {
	t.Parallel()

	s, store, _ := newTestServer(t, &fakeAssessor{result: &fit.Result{Fit: fit.LevelWeak}})

	if rec := do(t, s.Handler(), http.MethodPost, "/assess", assessBody(t, false)); rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	roles, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("expected no saved roles, got %d", len(roles))
	}
}

func TestAssessErrorMapping(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err         error
		wantStatus  int
		wantKind    string
		wantMessage string
	}{
		"input": {
			err:         &fit.InputError{Message: "Please paste a reasonably complete job description."},
			wantStatus:  http.StatusBadRequest,
			wantKind:    "input",
			wantMessage: "Please paste a reasonably complete job description.",
		},
		"malformed": {
			err:         &fit.StageError{Stage: fit.StageExtract, Err: fit.ErrInvalidRequirements},
			wantStatus:  http.StatusUnprocessableEntity,
			wantKind:    "malformed",
			wantMessage: "The AI response was not in the expected format. Try again, or simplify the job description.",
		},
		"provider": {
			err:         &ai.AllProvidersFailedError{Failures: []ai.ProviderFailure{{Provider: "openai", Err: errors.New("boom")}}},
			wantStatus:  http.StatusBadGateway,
			wantKind:    "provider",
			wantMessage: "The AI provider is not available. Please check your settings or try again later.",
		},
		"config": {
			err:        &ai.ConfigError{Provider: ai.ProviderOpenAI, Message: "missing OPENAI_API_KEY"},
			wantStatus: http.StatusInternalServerError,
			wantKind:   "config",
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s, _, _ := newTestServer(t, &fakeAssessor{err: tc.err})
			rec := do(t, s.Handler(), http.MethodPost, "/assess", assessBody(t, true))
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}

			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tc.wantKind {
				t.Fatalf("error kind = %q, want %q", body.Error, tc.wantKind)
			}
			if tc.wantMessage != "" && body.Message != tc.wantMessage {
				t.Fatalf("message = %q, want %q", body.Message, tc.wantMessage)
			}
		})
	}
}

func TestAssessRejectsInvalidBody(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestServer(t, &fakeAssessor{})
	rec := do(t, s.Handler(), http.MethodPost, "/assess", []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestModelsAndHealth(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestServer(t, &fakeAssessor{})

	rec := do(t, s.Handler(), http.MethodGet, "/models/MOCK", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"mock-model"`) {
		t.Fatalf("unexpected models response %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s.Handler(), http.MethodGet, "/models/gemini", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"models":[]`) {
		t.Fatalf("expected empty model list, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec = do(t, s.Handler(), http.MethodGet, "/models/cursor", nil); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected config error status, got %d", rec.Code)
	}
	if rec = do(t, s.Handler(), http.MethodGet, "/models/nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown provider, got %d", rec.Code)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d: %s", rec.Code, rec.Body.String())
	}

	if rec = do(t, s.Handler(), http.MethodGet, "/assess", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 on GET /assess, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	if StatusFor(fit.KindUnknown) != http.StatusInternalServerError {
		t.Fatalf("unknown errors should map to 500")
	}
}
