// Package server exposes the fit assessment pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/fit"
	"github.com/spigell/fitcheck/internal/logger"
	"github.com/spigell/fitcheck/internal/metrics"
	"github.com/spigell/fitcheck/internal/recent"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Assessor runs one fit assessment.
type Assessor interface {
	Assess(ctx context.Context, in fit.Input) (*fit.Result, error)
}

// ModelLister lists models for a provider.
type ModelLister interface {
	ListModels(ctx context.Context, name ai.ProviderName) ([]string, error)
}

// Deps are the collaborators behind the handlers. Recent and Metrics are optional.
type Deps struct {
	Assessor Assessor
	Models   ModelLister
	Recent   recent.Store
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Server serves the HTTP API.
type Server struct {
	deps       Deps
	logger     *zap.Logger
	httpServer *http.Server
}

// New builds the server and its routes.
func New(addr string, deps Deps) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	s := &Server{deps: deps, logger: logger.OrNop(deps.Logger)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /assess", s.handleAssess)
	mux.HandleFunc("GET /models/{provider}", s.handleModels)
	mux.HandleFunc("GET /recent", s.handleRecent)
	mux.HandleFunc("GET /recent/compare", s.handleRecentCompare)
	mux.HandleFunc("GET /health", s.handleHealth)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.withLogging(mux),
		ReadHeaderTimeout: 10 * time.Second,
		// Assessments wait on LLM providers and agent polling.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding JSON response", zap.Error(err))
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	kind := fit.Classify(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	s.jsonResponse(w, status, errorBody{Error: string(kind), Message: fit.FriendlyMessage(err)})
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(kind fit.ErrorKind) int {
	switch kind {
	case fit.KindInput:
		return http.StatusBadRequest
	case fit.KindMalformed:
		return http.StatusUnprocessableEntity
	case fit.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
