package models

import (
	"time"
)

// MetricSample is one observation of an owner's workload. History is the
// last 50 samples per owner, newest first.
type MetricSample struct {
	ID         string    `bson:"_id,omitempty" json:"-"`
	OwnerID    string    `bson:"ownerId" json:"ownerId"`
	LatencyMs  float64   `bson:"latency_ms" json:"latency_ms"`
	CPUPercent float64   `bson:"cpu" json:"cpu"`
	MemPercent float64   `bson:"memory" json:"memory"`
	ErrorRate  float64   `bson:"error_rate" json:"error_rate"`
	Collection string    `bson:"collection,omitempty" json:"collection,omitempty"`
	Pipeline   string    `bson:"pipeline,omitempty" json:"pipeline,omitempty"`
	Anomalies  []Anomaly `bson:"result,omitempty" json:"anomalies,omitempty"`
	CapturedAt time.Time `bson:"timestamp" json:"timestamp"`
}

// Anomaly flags one metric dimension that exceeded its baseline.
type Anomaly struct {
	Metric  string  `bson:"metric" json:"metric"`
	Value   float64 `bson:"value" json:"value"`
	Mean    float64 `bson:"mean" json:"mean"`
	StdDev  float64 `bson:"stddev" json:"stddev"`
	Message string  `bson:"message" json:"message"`
}
