// Package registry owns every live handle to an externally registered
// database. It is the only component allowed to hold long-lived driver
// connections; callers receive handles or records, never raw credentials.
package registry

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"github.com/dbpulse/dbpulse/internal/models"
)

// recentQueryLimit bounds the execution summaries embedded in Stats.
const recentQueryLimit = 10

// ConnectionStore persists connection records. Absent records are reported
// as (nil, nil) so the registry controls the error taxonomy.
type ConnectionStore interface {
	Insert(ctx context.Context, record *models.ConnectionRecord) error
	FindByID(ctx context.Context, id string) (*models.ConnectionRecord, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.ConnectionRecord, error)
	UpdateLastConnected(ctx context.Context, id string, at time.Time) error
	MarkInactive(ctx context.Context, id string) error
}

// ExecutionReader reads query-execution history for connection stats.
type ExecutionReader interface {
	FindRecent(ctx context.Context, ownerID, connectionID string, limit int64) ([]models.QueryExecution, error)
	Count(ctx context.Context, filter models.ExecutionFilter) (int64, error)
	AverageExecutionTime(ctx context.Context, ownerID, connectionID string) (float64, error)
}

// CreateSpec is the caller-provided description of a new connection.
type CreateSpec struct {
	Name         string `json:"connectionName"`
	Kind         string `json:"databaseType"`
	URI          string `json:"connectionString"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

// Registry is the process-wide cache of live handles, keyed by owner and
// connection ID. Constructed once in main and passed by reference.
//
// Map mutations happen under a coarse mutex held only for the check or the
// insert itself; handle creation is slow network I/O and runs outside the
// lock, deduplicated per key by a singleflight group so concurrent resolves
// of an unresolved key share one dial.
type Registry struct {
	connections ConnectionStore
	executions  ExecutionReader
	open        HandleOpener

	mu      sync.RWMutex
	handles map[string]*LiveHandle
	closed  map[string]struct{}
	group   singleflight.Group
}

// New creates a registry backed by the given stores, dialing real MongoDB
// handles.
func New(connections ConnectionStore, executions ExecutionReader) *Registry {
	return NewWithOpener(connections, executions, openMongoHandle)
}

// NewWithOpener creates a registry with a custom handle opener.
func NewWithOpener(connections ConnectionStore, executions ExecutionReader, open HandleOpener) *Registry {
	return &Registry{
		connections: connections,
		executions:  executions,
		open:        open,
		handles:     map[string]*LiveHandle{},
		closed:      map[string]struct{}{},
	}
}

func handleKey(ownerID, connectionID string) string {
	return ownerID + "/" + connectionID
}

// Create validates the spec, opens a live handle (blocking until the
// handshake completes), discovers collection and index metadata best-effort,
// persists the record and caches the handle. Nothing is persisted or cached
// when the handshake fails.
func (r *Registry) Create(ctx context.Context, ownerID string, spec CreateSpec) (*models.ConnectionRecord, error) {
	if ownerID == "" || spec.Name == "" || spec.Kind == "" || spec.URI == "" {
		return nil, ErrValidation
	}
	kind, ok := models.ParseDatabaseKind(spec.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, spec.Kind)
	}

	now := time.Now().UTC()
	record := &models.ConnectionRecord{
		ID:              primitive.NewObjectID().Hex(),
		OwnerID:         ownerID,
		Name:            spec.Name,
		Kind:            kind,
		URI:             spec.URI,
		Host:            spec.Host,
		Port:            spec.Port,
		DatabaseName:    spec.DatabaseName,
		Username:        spec.Username,
		Active:          true,
		LastConnectedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	handle, err := r.open(ctx, record)
	if err != nil {
		return nil, err
	}

	record.Metadata = discoverMetadata(ctx, handle)

	if err := r.connections.Insert(ctx, record); err != nil {
		_ = handle.Close(ctx)
		return nil, fmt.Errorf("registry: persisting connection record: %w", err)
	}

	r.mu.Lock()
	r.handles[handleKey(ownerID, record.ID)] = handle
	r.mu.Unlock()

	log.Printf("Connection created: %s (%s) for owner %s", record.Name, record.Kind, ownerID)
	return record, nil
}

// List returns the owner's active connections, most recently created first.
func (r *Registry) List(ctx context.Context, ownerID string) ([]models.ConnectionRecord, error) {
	return r.connections.FindByOwner(ctx, ownerID)
}

// Resolve returns the cached handle for the key, lazily reconnecting from
// the stored record when absent. A record that was explicitly closed is not
// resurrected; callers must Create a fresh connection.
//
// Concurrent resolves of the same unresolved key create at most one handle:
// the singleflight group collapses them onto a single dial, and a second
// check under the lock discards a losing duplicate.
func (r *Registry) Resolve(ctx context.Context, ownerID, connectionID string) (*LiveHandle, error) {
	key := handleKey(ownerID, connectionID)

	r.mu.RLock()
	handle, ok := r.handles[key]
	r.mu.RUnlock()
	if ok {
		return handle, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.reconnect(ctx, ownerID, connectionID, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*LiveHandle), nil
}

func (r *Registry) reconnect(ctx context.Context, ownerID, connectionID, key string) (*LiveHandle, error) {
	// A racing resolver may have finished between the caller's check and
	// this flight starting.
	r.mu.RLock()
	handle, ok := r.handles[key]
	r.mu.RUnlock()
	if ok {
		return handle, nil
	}

	record, err := r.connections.FindByID(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("registry: loading connection record: %w", err)
	}
	if record == nil {
		return nil, ErrNotFound
	}
	if record.OwnerID != ownerID {
		return nil, ErrUnauthorized
	}
	if !record.Active {
		return nil, ErrConnectionClosed
	}

	fresh, err := r.open(ctx, record)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	// The record's active check above raced any Close that finished while we
	// were dialing; closed keys never come back, so the set is authoritative.
	if _, ok := r.closed[key]; ok {
		r.mu.Unlock()
		_ = fresh.Close(ctx)
		return nil, ErrConnectionClosed
	}
	if existing, ok := r.handles[key]; ok {
		r.mu.Unlock()
		_ = fresh.Close(ctx)
		return existing, nil
	}
	r.handles[key] = fresh
	r.mu.Unlock()

	log.Printf("Reconnected to %s for owner %s", connectionID, ownerID)
	return fresh, nil
}

// Close evicts and tears down the cached handle if present and marks the
// record inactive. Idempotent: closing an unknown or already closed
// connection is a no-op on the cache.
func (r *Registry) Close(ctx context.Context, ownerID, connectionID string) error {
	key := handleKey(ownerID, connectionID)

	r.mu.Lock()
	handle, ok := r.handles[key]
	delete(r.handles, key)
	// Connection IDs are never reused, so closed keys stay closed for the
	// life of the process. This blocks an in-flight reconnect from caching a
	// handle for a record being marked inactive.
	r.closed[key] = struct{}{}
	r.mu.Unlock()

	if ok {
		if err := handle.Close(ctx); err != nil {
			log.Printf("Error closing handle %s: %v", key, err)
		}
	}

	if err := r.connections.MarkInactive(ctx, connectionID); err != nil {
		return fmt.Errorf("registry: marking connection inactive: %w", err)
	}

	log.Printf("Connection closed: %s (owner %s)", connectionID, ownerID)
	return nil
}

// TouchLastConnected refreshes the record's last-connected timestamp.
// Persistence failures here are logged and swallowed; they never fail the
// query that triggered the refresh.
func (r *Registry) TouchLastConnected(ctx context.Context, connectionID string) {
	if err := r.connections.UpdateLastConnected(ctx, connectionID, time.Now().UTC()); err != nil {
		log.Printf("Error updating lastConnected for %s: %v", connectionID, err)
	}
}

// Stats combines the record's metadata with recent execution history and
// aggregate timings. Foreign records are reported as not found.
func (r *Registry) Stats(ctx context.Context, ownerID, connectionID string) (*models.ConnectionStats, error) {
	record, err := r.connections.FindByID(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("registry: loading connection record: %w", err)
	}
	if record == nil || record.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	recent, err := r.executions.FindRecent(ctx, ownerID, connectionID, recentQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("registry: loading recent executions: %w", err)
	}
	total, err := r.executions.Count(ctx, models.ExecutionFilter{OwnerID: ownerID, ConnectionID: connectionID})
	if err != nil {
		return nil, fmt.Errorf("registry: counting executions: %w", err)
	}
	avg, err := r.executions.AverageExecutionTime(ctx, ownerID, connectionID)
	if err != nil {
		return nil, fmt.Errorf("registry: averaging execution time: %w", err)
	}

	summaries := make([]models.ExecutionSummary, 0, len(recent))
	for i := range recent {
		summaries = append(summaries, recent[i].Summary())
	}

	return &models.ConnectionStats{
		ConnectionInfo: models.ConnectionInfo{
			Name:          record.Name,
			Kind:          record.Kind,
			DatabaseName:  record.DatabaseName,
			LastConnected: record.LastConnectedAt,
		},
		RecentQueries:          summaries,
		TotalQueries:           total,
		AverageExecutionTimeMs: avg,
	}, nil
}

// Shutdown closes every live handle. Called once at process exit.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	handles := r.handles
	r.handles = map[string]*LiveHandle{}
	r.mu.Unlock()

	for key, handle := range handles {
		if err := handle.Close(ctx); err != nil {
			log.Printf("Error closing handle %s during shutdown: %v", key, err)
		}
	}
	if len(handles) > 0 {
		log.Printf("Closed %d live handles", len(handles))
	}
}

// HandleCount reports the number of cached live handles.
func (r *Registry) HandleCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
