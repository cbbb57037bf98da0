package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/fit"
)

var _ ai.Observer = (*Metrics)(nil)

func TestObserveAssessment(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveAssessment(&fit.Result{Fit: fit.LevelStrong}, nil, time.Second)
	m.ObserveAssessment(&fit.Result{Fit: fit.LevelStrong}, nil, time.Second)
	m.ObserveAssessment(nil, &fit.InputError{Message: "too short"}, time.Millisecond)

	if got := testutil.ToFloat64(m.Assessments.WithLabelValues("strong", "ok")); got != 2 {
		t.Fatalf("expected 2 strong assessments, got %v", got)
	}
	if got := testutil.ToFloat64(m.Assessments.WithLabelValues("", "input")); got != 1 {
		t.Fatalf("expected 1 input failure, got %v", got)
	}
}

func TestObserveProviderCallAndHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveProviderCall("openai", errors.New("boom"))
	m.ObserveProviderCall("ollama", nil)
	m.ObserveRecentSave(nil)

	if got := testutil.ToFloat64(m.ProviderCalls.WithLabelValues("openai", "error")); got != 1 {
		t.Fatalf("expected 1 openai error, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`fitcheck_provider_calls_total{provider="ollama",status="ok"} 1`,
		`fitcheck_recent_role_saves_total{status="ok"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, body)
		}
	}
}
