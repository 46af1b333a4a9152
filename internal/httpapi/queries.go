package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dbpulse/dbpulse/internal/models"
	"github.com/dbpulse/dbpulse/internal/query"
	"github.com/dbpulse/dbpulse/internal/system"
)

type queryRequestBody struct {
	Query      json.RawMessage `json:"query"`
	QueryType  string          `json:"queryType"`
	Collection string          `json:"collection"`
	Database   string          `json:"database"`
}

func (s *Server) handleExecuteQuery(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("userId")
	connectionID := r.PathValue("connectionId")

	var body queryRequestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := query.Parse(body.QueryType, body.Collection, body.Query)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	req.Database = body.Database

	handle, err := s.registry.Resolve(r.Context(), ownerID, connectionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result := s.executor.Run(r.Context(), handle, req)

	// A successful reconnect counts as connected even when the query fails;
	// the timestamp only tracks successful use.
	if result.Success {
		s.registry.TouchLastConnected(r.Context(), connectionID)
	}

	s.recordExecution(ownerID, connectionID, req, result)

	writeJSON(w, http.StatusOK, result)
}

// recordExecution hands the execution off to the background recorder. The
// response has already been decided; nothing here can affect it.
func (s *Server) recordExecution(ownerID, connectionID string, req *query.Request, result *models.QueryResult) {
	if s.recorder == nil {
		return
	}

	status := models.ExecutionStatusSuccess
	if !result.Success {
		status = models.ExecutionStatusError
	}

	sysMetrics := models.SystemMetrics{Latency: float64(result.ExecutionTimeMs)}
	if sys, err := system.Collect(); err == nil {
		sysMetrics.CPU = sys.CPUUsagePercent
		sysMetrics.Memory = sys.MemoryUsagePercent
	}

	s.recorder.Record(&models.QueryExecution{
		OwnerID:         ownerID,
		ConnectionID:    connectionID,
		Query:           req.String(),
		QueryKind:       string(req.Kind),
		Collection:      req.Collection,
		Database:        req.Database,
		ExecutionTimeMs: result.ExecutionTimeMs,
		Status:          status,
		ResultCount:     result.ResultCount,
		ErrorMessage:    result.ErrorMessage,
		SystemMetrics:   sysMetrics,
		ExecutedAt:      time.Now().UTC(),
	})
}

func (s *Server) handleQueryHistory(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("userId")

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := models.ExecutionFilter{
		OwnerID:      ownerID,
		ConnectionID: r.URL.Query().Get("connectionId"),
		QueryKind:    r.URL.Query().Get("queryType"),
		Status:       r.URL.Query().Get("status"),
	}

	skip := int64((page - 1) * limit)
	executions, err := s.executions.Find(r.Context(), filter, skip, int64(limit))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	total, err := s.executions.Count(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"queries": executions,
			"pagination": map[string]any{
				"page":  page,
				"limit": limit,
				"total": total,
				"pages": pages,
			},
		},
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("userId")

	days := queryInt(r, "days", 7)
	if days < 1 {
		days = 7
	}

	summaries, err := s.executions.DailySummaries(r.Context(), ownerID, days)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"dailyAnalytics": summaries,
			"period":         map[string]any{"days": days},
		},
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Ignoring invalid %s parameter: %q", key, raw)
		return fallback
	}
	return n
}
