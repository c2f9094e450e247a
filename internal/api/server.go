// Package api exposes the HTTP surface: session auth, note capture and
// listing, AI tag extraction, screenshot drafts, summaries and goal
// plans. Handlers validate input, call the store or the coach, and
// return JSON; every failure is mapped to a structured error response.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/riftnotes/riftnotes/internal/apperr"
	"github.com/riftnotes/riftnotes/internal/coach"
	"github.com/riftnotes/riftnotes/internal/llm"
	"github.com/riftnotes/riftnotes/internal/session"
	"github.com/riftnotes/riftnotes/internal/store"
)

// Server handles HTTP requests for the riftnotes API
type Server struct {
	store    *store.Store
	coach    *coach.Coach
	sessions *session.Manager
	log      zerolog.Logger
	addr     string
}

// New creates a new API server. coach may be nil when no model
// endpoint is configured; AI routes then answer 503.
func New(s *store.Store, c *coach.Coach, sessions *session.Manager, log zerolog.Logger, addr string) *Server {
	return &Server{store: s, coach: c, sessions: sessions, log: log, addr: addr}
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/check", s.checkAuth)
	mux.HandleFunc("POST /api/auth/logout", s.logout)

	// Notes
	mux.HandleFunc("GET /api/notes", s.listNotes)
	mux.HandleFunc("POST /api/notes", s.createNote)
	mux.HandleFunc("POST /api/notes/summarize", s.summarizeNotes)

	// AI helpers
	mux.HandleFunc("POST /api/autotag", s.autotag)
	mux.HandleFunc("POST /api/embedding", s.embedding)
	mux.HandleFunc("POST /api/draft", s.draftFromImage)

	// Goals
	mux.HandleFunc("POST /api/goals", s.generateGoals)
	mux.HandleFunc("POST /api/goals/save", s.saveGoals)
	mux.HandleFunc("GET /api/goals/save", s.getGoals)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(s.logRequests(mux))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.log.Info().Str("addr", s.addr).Msg("starting server")
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h.ServeHTTP(rec, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireUser resolves the session identity or writes a 401
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := s.sessions.UserID(r)
	if err != nil {
		s.writeFailure(w, err)
		return "", false
	}
	return userID, true
}

// requireCoach guards AI-backed routes when no model is configured
func (s *Server) requireCoach(w http.ResponseWriter) bool {
	if s.coach == nil {
		writeError(w, http.StatusServiceUnavailable, "model endpoint not configured")
		return false
	}
	return true
}

// writeFailure maps the error taxonomy onto HTTP responses: caller
// mistakes are 400/401, model-side failures 502 with diagnostic
// detail, everything else 500. Nothing is retried.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var (
		verr *apperr.ValidationError
		serr *apperr.SchemaViolationError
		uerr *llm.UnparsableResponseError
		aerr *llm.AuthError
	)

	switch {
	case errors.Is(err, apperr.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Invalid request",
			"issues": verr.Issues,
		})
	case errors.As(err, &serr):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":  "Model response failed validation",
			"issues": serr.Issues,
		})
	case errors.As(err, &uerr):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": "Failed to parse model JSON response",
			"raw":   uerr.Raw,
		})
	case errors.Is(err, llm.ErrNoModelResponse):
		writeError(w, http.StatusBadGateway, "No response from model")
	case errors.As(err, &aerr):
		s.log.Error().Int("status", aerr.StatusCode).Msg("model provider rejected credentials")
		writeError(w, http.StatusBadGateway, "Model provider rejected credentials")
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
