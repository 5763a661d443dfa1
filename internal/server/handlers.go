package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"okrlens/internal/persistence"
)

// Health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body for non-2xx responses
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleEvaluate handles GET /evaluate?url=...
// It runs the full pipeline synchronously and returns the complete record.
// A record whose fetch failed is still a 200: the failure is part of the
// result, not a transport error.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		s.respondError(w, http.StatusBadRequest, "missing required query parameter: url")
		return
	}
	if _, err := url.ParseRequestURI(target); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid url parameter")
		return
	}

	record := s.evaluator.Evaluate(r.Context(), target)
	s.respondJSON(w, http.StatusOK, record)
}

// handleDashboardResults handles GET /dashboard/results
func (s *Server) handleDashboardResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.results.ListAll(r.Context())
	if err != nil {
		s.log.Error("Failed to list evaluations", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to read stored evaluations")
		return
	}
	if results == nil {
		results = []persistence.StoredEvaluation{}
	}

	s.respondJSON(w, http.StatusOK, results)
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
