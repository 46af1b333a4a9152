package httpapi

import (
	"encoding/json"
	"net/http"
)

type metricsRequestBody struct {
	Collection string          `json:"collection"`
	Pipeline   json.RawMessage `json:"pipeline"`
}

// handleMetrics runs the probe aggregation for the authenticated owner and
// returns the recorded sample with any flagged anomalies.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerIDFrom(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	var body metricsRequestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sample, err := s.monitor.RecordAndEvaluate(r.Context(), ownerID, body.Collection, body.Pipeline)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp":  sample.CapturedAt,
		"latency_ms": sample.LatencyMs,
		"cpu":        sample.CPUPercent,
		"memory":     sample.MemPercent,
		"error_rate": sample.ErrorRate,
		"anomalies":  sample.Anomalies,
		"metrics": map[string]float64{
			"latency_ms": sample.LatencyMs,
			"cpu":        sample.CPUPercent,
			"memory":     sample.MemPercent,
			"error_rate": sample.ErrorRate,
		},
	})
}

// handleDashboard returns the owner's recorded samples for one probe
// collection.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerIDFrom(r.Context())
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	collection := r.URL.Query().Get("collection")
	if collection == "" {
		writeError(w, http.StatusBadRequest, "collection is required")
		return
	}

	samples, err := s.metrics.FindByOwnerAndCollection(r.Context(), ownerID, collection)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"queries": samples})
}
