// Package monitor records workload metric samples and evaluates them
// against each owner's rolling baseline.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dbpulse/dbpulse/internal/detector"
	"github.com/dbpulse/dbpulse/internal/models"
	"github.com/dbpulse/dbpulse/internal/query"
	"github.com/dbpulse/dbpulse/internal/system"
)

// historyLimit is the baseline window: the most recent samples per owner.
const historyLimit = 50

// MetricStore persists and reads back metric samples.
type MetricStore interface {
	Insert(ctx context.Context, sample *models.MetricSample) error
	FindRecentByOwner(ctx context.Context, ownerID string, limit int64) ([]models.MetricSample, error)
}

// AnomalyPublisher forwards flagged samples to the event bus.
type AnomalyPublisher interface {
	PublishAnomalies(ownerID string, sample models.MetricSample, anomalies []models.Anomaly) error
}

type queryCounter struct {
	total  int64
	failed int64
}

// Monitor owns per-owner query counters and the record-and-evaluate flow.
// Error rates are tracked per owner, consistent with the per-owner baseline
// history.
type Monitor struct {
	db        *mongo.Database
	metrics   MetricStore
	publisher AnomalyPublisher

	// Overridable in tests.
	sampleSystem func() (*system.Metrics, error)
	runProbe     func(ctx context.Context, collection string, pipeline []bson.M) error

	mu       sync.Mutex
	counters map[string]*queryCounter
}

// New creates a monitor probing the given application database. The
// publisher may be nil, in which case anomaly events are not emitted.
func New(db *mongo.Database, metrics MetricStore, publisher AnomalyPublisher) *Monitor {
	m := &Monitor{
		db:           db,
		metrics:      metrics,
		publisher:    publisher,
		sampleSystem: system.Collect,
		counters:     map[string]*queryCounter{},
	}
	m.runProbe = m.aggregateProbe
	return m
}

// RecordAndEvaluate runs the probe aggregation, measures its latency,
// samples system state, computes the owner's error rate, scores the sample
// against the owner's last 50 samples, persists it with any anomalies
// embedded, and publishes flagged samples best-effort.
//
// Probe failures count toward the error rate but do not fail the call;
// persistence and publishing failures are logged and swallowed so the
// primary response path is never affected.
func (m *Monitor) RecordAndEvaluate(ctx context.Context, ownerID, collection string, pipeline json.RawMessage) (*models.MetricSample, error) {
	req, err := query.Parse(string(query.KindAggregate), collection, pipeline)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	probeErr := m.runProbe(ctx, req.Collection, req.Pipeline)
	latency := float64(time.Since(start).Milliseconds())

	errorRate := m.bump(ownerID, probeErr != nil)
	if probeErr != nil {
		log.Printf("Probe query failed for owner %s: %v", ownerID, probeErr)
	}

	sys, err := m.sampleSystem()
	if err != nil {
		log.Printf("System sampling failed: %v", err)
		sys = &system.Metrics{}
	}

	sample := models.MetricSample{
		OwnerID:    ownerID,
		LatencyMs:  latency,
		CPUPercent: sys.CPUUsagePercent,
		MemPercent: sys.MemoryUsagePercent,
		ErrorRate:  errorRate,
		Collection: req.Collection,
		Pipeline:   req.String(),
		CapturedAt: time.Now().UTC(),
	}

	history, err := m.metrics.FindRecentByOwner(ctx, ownerID, historyLimit)
	if err != nil {
		log.Printf("Error loading metric history for owner %s: %v", ownerID, err)
		history = nil
	}

	sample.Anomalies = detector.Evaluate(sample, history)

	if err := m.metrics.Insert(ctx, &sample); err != nil {
		log.Printf("Error persisting metric sample for owner %s: %v", ownerID, err)
	}

	if m.publisher != nil && len(sample.Anomalies) > 0 {
		if err := m.publisher.PublishAnomalies(ownerID, sample, sample.Anomalies); err != nil {
			log.Printf("Error publishing anomaly event for owner %s: %v", ownerID, err)
		}
	}

	return &sample, nil
}

// bump advances the owner's query counters and returns the resulting error
// rate.
func (m *Monitor) bump(ownerID string, failed bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	counter, ok := m.counters[ownerID]
	if !ok {
		counter = &queryCounter{}
		m.counters[ownerID] = counter
	}
	counter.total++
	if failed {
		counter.failed++
	}
	return float64(counter.failed) / float64(counter.total)
}

func (m *Monitor) aggregateProbe(ctx context.Context, collection string, pipeline []bson.M) error {
	cursor, err := m.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	var rows []bson.M
	return cursor.All(ctx, &rows)
}
