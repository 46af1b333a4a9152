// Package httpapi exposes the gateway over HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dbpulse/dbpulse/internal/auth"
	"github.com/dbpulse/dbpulse/internal/models"
	"github.com/dbpulse/dbpulse/internal/monitor"
	"github.com/dbpulse/dbpulse/internal/query"
	"github.com/dbpulse/dbpulse/internal/registry"
	"github.com/dbpulse/dbpulse/internal/users"
)

// ExecutionHistory reads execution records for the history and analytics
// endpoints.
type ExecutionHistory interface {
	Find(ctx context.Context, filter models.ExecutionFilter, skip, limit int64) ([]models.QueryExecution, error)
	Count(ctx context.Context, filter models.ExecutionFilter) (int64, error)
	DailySummaries(ctx context.Context, ownerID string, since int) ([]models.DailySummary, error)
}

// MetricHistory reads recorded metric samples for the dashboard endpoint.
type MetricHistory interface {
	FindByOwnerAndCollection(ctx context.Context, ownerID, collection string) ([]models.MetricSample, error)
}

type Server struct {
	registry   *registry.Registry
	executor   *query.Executor
	monitor    *monitor.Monitor
	recorder   *monitor.Recorder
	users      *users.Service
	tokens     *auth.Manager
	executions ExecutionHistory
	metrics    MetricHistory

	httpServer *http.Server
}

func NewServer(
	reg *registry.Registry,
	executor *query.Executor,
	mon *monitor.Monitor,
	recorder *monitor.Recorder,
	userService *users.Service,
	tokens *auth.Manager,
	executions ExecutionHistory,
	metrics MetricHistory,
) *Server {
	return &Server{
		registry:   reg,
		executor:   executor,
		monitor:    mon,
		recorder:   recorder,
		users:      userService,
		tokens:     tokens,
		executions: executions,
		metrics:    metrics,
	}
}

// Start blocks serving the API until Stop or a listen failure.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	log.Printf("HTTP Server listening on: %s", addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Handler builds the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/user/register", s.handleRegister)
	mux.HandleFunc("POST /api/user/login", s.handleLogin)
	mux.HandleFunc("GET /api/user", s.handleListUsers)

	mux.HandleFunc("POST /api/database/users/{userId}/connections", s.requireAuth(s.handleCreateConnection))
	mux.HandleFunc("GET /api/database/users/{userId}/connections", s.handleListConnections)
	mux.HandleFunc("DELETE /api/database/users/{userId}/connections/{connectionId}", s.handleCloseConnection)
	mux.HandleFunc("POST /api/database/users/{userId}/connections/{connectionId}/query", s.handleExecuteQuery)
	mux.HandleFunc("GET /api/database/users/{userId}/connections/{connectionId}/stats", s.handleConnectionStats)
	mux.HandleFunc("GET /api/database/users/{userId}/queries", s.handleQueryHistory)
	mux.HandleFunc("GET /api/database/users/{userId}/analytics", s.handleAnalytics)

	mux.HandleFunc("POST /api/database/metrics", s.requireAuth(s.handleMetrics))
	mux.HandleFunc("GET /api/dashboard", s.requireAuth(s.handleDashboard))

	return s.enableCORS(mux)
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	log.Printf("Stopping HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	log.Printf("HTTP server stopped successfully")
	return nil
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth verifies the bearer token and stashes the owner ID in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}
		ownerID, err := s.tokens.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid authorization token")
			return
		}
		next(w, r.WithContext(withOwnerID(r.Context(), ownerID)))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse())
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// writeDomainError maps a domain error onto an HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, registry.ErrValidation),
		errors.Is(err, registry.ErrUnsupportedKind),
		errors.Is(err, query.ErrValidation),
		errors.Is(err, query.ErrUnsupportedKind),
		errors.Is(err, users.ErrValidation),
		errors.Is(err, users.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrUnauthorized),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrConnectionClosed):
		return http.StatusConflict
	case errors.Is(err, registry.ErrConnectFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
