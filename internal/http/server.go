// Package http provides the quote API HTTP server.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"moodquote/internal/config"
	"moodquote/internal/domain"
	"moodquote/internal/quote"
	"moodquote/internal/telemetry"
)

// Server is the HTTP API server.
type Server struct {
	config  *config.Config
	service *quote.Service
	metrics *telemetry.Metrics
	mux     *http.ServeMux
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Config, svc *quote.Service, metrics *telemetry.Metrics) *Server {
	s := &Server{
		config:  cfg,
		service: svc,
		metrics: metrics,
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /api/quote", s.instrument("quote", s.handleQuote))
	s.mux.HandleFunc("GET /api/health", s.instrument("health", s.handleHealth))
	s.mux.Handle("GET /metrics", telemetry.Handler())
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.requestIDMiddleware(s.mux))
}

// Start runs the server until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

// corsMiddleware adds CORS headers for the browser UI.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every request with an ID for log correlation.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID from the context, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request metrics around a handler.
func (s *Server) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.RequestsInFlight.Inc()
		defer s.metrics.RequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.metrics.RequestsTotal.WithLabelValues(name, fmt.Sprintf("%d", rec.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

// QuoteRequest is the request body for POST /api/quote.
type QuoteRequest struct {
	Mood string `json:"mood"`
}

// DegradedResponse is the body for a provider-failure response. It
// still carries a usable quote.
type DegradedResponse struct {
	Quote       string    `json:"quote"`
	Mood        string    `json:"mood"`
	GeneratedAt time.Time `json:"generated_at"`
	Error       string    `json:"error"`
	Fallback    bool      `json:"fallback"`
}

// HealthResponse is the body for GET /api/health.
type HealthResponse struct {
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	GeminiConfigured bool      `json:"geminiConfigured"`
	Provider         string    `json:"provider,omitempty"`
}

// ErrorResponse is the body for plain error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleQuote resolves a mood to a quote.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxRequestSize)

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Mood is required and must be a string")
		return
	}

	rec, err := s.service.Fetch(r.Context(), req.Mood)
	if err != nil {
		var provErr *domain.ProviderError
		switch {
		case errors.As(err, &provErr) && rec != nil:
			// Degraded: a server error status with content the UI can
			// still render.
			slog.Error("Serving degraded quote",
				"request_id", RequestID(r.Context()),
				"provider", provErr.Provider,
				"error", provErr.Err,
			)
			s.writeJSON(w, http.StatusInternalServerError, DegradedResponse{
				Quote:       rec.Text,
				Mood:        rec.Mood,
				GeneratedAt: rec.GeneratedAt,
				Error:       "Failed to generate custom quote, using fallback",
				Fallback:    true,
			})
		case errors.Is(err, domain.ErrEmptyMood):
			s.writeError(w, http.StatusBadRequest, "Mood is required and must be a string")
		default:
			s.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

// handleHealth handles the health check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:           "ok",
		Timestamp:        time.Now().UTC(),
		GeminiConfigured: s.service.Configured(),
	}
	if s.service.Configured() {
		resp.Provider = string(s.service.ProviderName())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
