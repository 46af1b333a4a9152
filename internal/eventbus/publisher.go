// Package eventbus publishes anomaly events to NATS for downstream
// consumers (dashboards, alerting).
package eventbus

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/dbpulse/dbpulse/internal/models"
)

const anomalySubject = "dbpulse.anomalies"

// AnomalyEvent is the wire format for one flagged sample.
type AnomalyEvent struct {
	EventID   string              `json:"event_id"`
	OwnerID   string              `json:"owner_id"`
	Sample    models.MetricSample `json:"sample"`
	Anomalies []models.Anomaly    `json:"anomalies"`
	Timestamp time.Time           `json:"timestamp"`
}

type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS with retry-on-failure semantics.
func NewPublisher(natsURL string) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("Connected to NATS at %s", natsURL)

	return &Publisher{conn: conn}, nil
}

// PublishAnomalies sends one event for a sample that flagged anomalies.
func (p *Publisher) PublishAnomalies(ownerID string, sample models.MetricSample, anomalies []models.Anomaly) error {
	event := AnomalyEvent{
		EventID:   uuid.NewString(),
		OwnerID:   ownerID,
		Sample:    sample,
		Anomalies: anomalies,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(anomalySubject, data); err != nil {
		return err
	}

	log.Printf("Published anomaly event for owner %s (%d anomalies)", ownerID, len(anomalies))
	return nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
		log.Printf("Disconnected from NATS")
	}
}

func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}
