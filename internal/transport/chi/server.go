// Package chi implements the HTTP API on top of the chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/skillserve/skillapi/internal/domain"
	"github.com/skillserve/skillapi/internal/domain/query"
	"github.com/skillserve/skillapi/internal/usecase/skill"

	healthuc "github.com/skillserve/skillapi/internal/usecase/health"
)

// errorCode is the machine-readable error code in error responses.
type errorCode string

const (
	codeBadRequest         errorCode = "bad_request"
	codeValidationFailed   errorCode = "validation_failed"
	codeShapeMismatch      errorCode = "shape_mismatch"
	codeMissingField       errorCode = "missing_field"
	codeUnknownSkill       errorCode = "unknown_skill"
	codeModelProviderError errorCode = "model_provider_error"
	codeInternalError      errorCode = "internal_error"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the skill query API.
type Server struct {
	skills        skill.Runner
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(skills skill.Runner, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		skills: skills,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrShapeMismatch, http.StatusBadRequest, codeShapeMismatch),
		sentinelHandler(domain.ErrUnknownSkill, http.StatusBadRequest, codeUnknownSkill),
		sentinelHandler(domain.ErrMissingField, http.StatusBadGateway, codeMissingField),
		sentinelHandler(domain.ErrModelProviderError, http.StatusBadGateway, codeModelProviderError),
	}
	return s
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/query", s.Query)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// queryRequest is the POST /query body. Context accepts either a single
// string or an array of strings; context_score accepts either a single
// number or an array of numbers.
type queryRequest struct {
	Query        string          `json:"query"`
	Skill        string          `json:"skill"`
	Choices      []string        `json:"choices,omitempty"`
	Context      json.RawMessage `json:"context,omitempty"`
	ContextScore json.RawMessage `json:"context_score,omitempty"`
	UserID       string          `json:"user_id,omitempty"`
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, err := contextFromJSON(req.Context)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	score, err := contextScoreFromJSON(req.ContextScore)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	domReq, err := query.NewRequest(req.Query, query.Skill(req.Skill), req.Choices, ctx, score, req.UserID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out, err := s.skills.Query(r.Context(), domReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out.Record())
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// contextFromJSON decodes the polymorphic context field.
func contextFromJSON(raw json.RawMessage) (query.Context, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return query.NoContext(), nil
	}

	var shared string
	if err := json.Unmarshal(raw, &shared); err == nil {
		return query.SharedContext(shared), nil
	}

	var perAnswer []string
	if err := json.Unmarshal(raw, &perAnswer); err == nil {
		return query.PerAnswerContext(perAnswer), nil
	}

	return query.Context{}, errors.New("context must be a string or an array of strings")
}

// contextScoreFromJSON decodes the polymorphic context_score field.
func contextScoreFromJSON(raw json.RawMessage) (query.ContextScore, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return query.DefaultScore(), nil
	}

	var shared float64
	if err := json.Unmarshal(raw, &shared); err == nil {
		return query.SharedScore(shared), nil
	}

	var perAnswer []float64
	if err := json.Unmarshal(raw, &perAnswer); err == nil {
		return query.PerAnswerScores(perAnswer), nil
	}

	return query.ContextScore{}, errors.New("context_score must be a number or an array of numbers")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrShapeMismatch,
		domain.ErrMissingField,
		domain.ErrUnknownSkill,
		domain.ErrModelProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
