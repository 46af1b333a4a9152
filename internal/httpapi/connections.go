package httpapi

import (
	"net/http"

	"github.com/dbpulse/dbpulse/internal/registry"
)

func (s *Server) handleCreateConnection(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("userId")

	var spec registry.CreateSpec
	if err := decodeBody(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.registry.Create(r.Context(), ownerID, spec)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Database connection created successfully",
		"data": map[string]any{
			"connectionId":   record.ID,
			"connectionName": record.Name,
			"status":         "connected",
			"metadata":       record.Metadata,
		},
	})
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("userId")

	records, err := s.registry.List(r.Context(), ownerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    records,
	})
}

func (s *Server) handleCloseConnection(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("userId")
	connectionID := r.PathValue("connectionId")

	if err := s.registry.Close(r.Context(), ownerID, connectionID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Connection closed successfully",
	})
}

func (s *Server) handleConnectionStats(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("userId")
	connectionID := r.PathValue("connectionId")

	stats, err := s.registry.Stats(r.Context(), ownerID, connectionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    stats,
	})
}
