package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fitcheck/internal/ai"
	"github.com/spigell/fitcheck/internal/fit"
	"github.com/spigell/fitcheck/internal/profile"
	"github.com/spigell/fitcheck/internal/recent"
)

// AssessRequest is the body of POST /assess.
type AssessRequest struct {
	JobDescription string           `json:"jobDescription"`
	Profile        *profile.Profile `json:"profile"`
	LLMSettings    *ai.Settings     `json:"llmSettings,omitempty"`
	Save           bool             `json:"save,omitempty"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.errorResponse(w, &fit.InputError{Message: "Request body must be a JSON object", Err: err})
		return
	}

	start := time.Now()
	result, err := s.deps.Assessor.Assess(r.Context(), fit.Input{
		JobDescription: req.JobDescription,
		Profile:        req.Profile,
		Settings:       req.LLMSettings,
	})
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveAssessment(result, err, time.Since(start))
	}
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	if req.Save && s.deps.Recent != nil {
		_, saveErr := s.deps.Recent.Add(r.Context(), recent.Entry{JobDescription: req.JobDescription, Fit: result})
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveRecentSave(saveErr)
		}
		if saveErr != nil {
			// The assessment itself succeeded.
			s.logger.Warn("saving recent role", zap.Error(saveErr))
		}
	}

	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	name := ai.ProviderName(strings.ToLower(strings.TrimSpace(r.PathValue("provider"))))
	if !ai.IsKnownProvider(name) {
		s.jsonResponse(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "unknown provider " + string(name)})
		return
	}

	models, err := s.deps.Models.ListModels(r.Context(), name)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if models == nil {
		models = []string{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"provider": name, "models": models})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	roles, ok := s.listRecent(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, roles)
}

func (s *Server) handleRecentCompare(w http.ResponseWriter, r *http.Request) {
	roles, ok := s.listRecent(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, recent.Compare(roles))
}

func (s *Server) listRecent(w http.ResponseWriter, r *http.Request) ([]recent.Role, bool) {
	if s.deps.Recent == nil {
		return []recent.Role{}, true
	}

	roles, err := s.deps.Recent.List(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return nil, false
	}
	return roles, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
