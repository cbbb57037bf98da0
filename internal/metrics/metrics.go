// Package metrics exposes prometheus counters for assessments and provider calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spigell/fitcheck/internal/fit"
)

const (
	namespace = "fitcheck"

	outcomeOK = "ok"
	statusOK  = "ok"
	statusErr = "error"
)

// Metrics holds the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	Assessments        *prometheus.CounterVec
	AssessmentDuration prometheus.Histogram
	ProviderCalls      *prometheus.CounterVec
	RecentSaves        *prometheus.CounterVec
}

// New registers all collectors plus the go and process collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Assessments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assessments_total",
				Help:      "Total number of fit assessments by fit level and outcome",
			},
			[]string{"fit", "outcome"},
		),
		AssessmentDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assessment_duration_seconds",
				Help:      "Duration of fit assessments in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		ProviderCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of LLM provider attempts by provider and status",
			},
			[]string{"provider", "status"},
		),
		RecentSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recent_role_saves_total",
				Help:      "Total number of recent role saves by status",
			},
			[]string{"status"},
		),
	}
}

// ObserveProviderCall implements ai.Observer.
func (m *Metrics) ObserveProviderCall(provider string, err error) {
	m.ProviderCalls.WithLabelValues(provider, status(err)).Inc()
}

// ObserveAssessment records one pipeline run. Failed runs are labelled with
// their error kind and an empty fit level.
func (m *Metrics) ObserveAssessment(result *fit.Result, err error, elapsed time.Duration) {
	m.AssessmentDuration.Observe(elapsed.Seconds())

	if err != nil {
		m.Assessments.WithLabelValues("", string(fit.Classify(err))).Inc()
		return
	}

	level := ""
	if result != nil {
		level = string(result.Fit)
	}
	m.Assessments.WithLabelValues(level, outcomeOK).Inc()
}

// ObserveRecentSave records a recent roles store write.
func (m *Metrics) ObserveRecentSave(err error) {
	m.RecentSaves.WithLabelValues(status(err)).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func status(err error) string {
	if err != nil {
		return statusErr
	}
	return statusOK
}
