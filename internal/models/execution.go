package models

import (
	"time"
)

// Execution statuses.
const (
	ExecutionStatusSuccess = "success"
	ExecutionStatusError   = "error"
)

// SystemMetrics is the machine state sampled around a query execution.
type SystemMetrics struct {
	CPU     float64 `bson:"cpu" json:"cpu"`
	Memory  float64 `bson:"memory" json:"memory"`
	Latency float64 `bson:"latency" json:"latency"`
}

// QueryExecution is the durable record of one executed query.
type QueryExecution struct {
	ID              string        `bson:"_id,omitempty" json:"-"`
	OwnerID         string        `bson:"ownerId" json:"ownerId"`
	ConnectionID    string        `bson:"connectionId" json:"connectionId"`
	Query           string        `bson:"query" json:"query"`
	QueryKind       string        `bson:"queryType" json:"queryType"`
	Collection      string        `bson:"collection" json:"collection"`
	Database        string        `bson:"database,omitempty" json:"database,omitempty"`
	ExecutionTimeMs int64         `bson:"executionTime" json:"executionTime"`
	Status          string        `bson:"status" json:"status"`
	ResultCount     int64         `bson:"resultCount" json:"resultCount"`
	ErrorMessage    string        `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	SystemMetrics   SystemMetrics `bson:"systemMetrics" json:"systemMetrics"`
	ExecutedAt      time.Time     `bson:"executedAt" json:"executedAt"`
}

// ExecutionSummary is the trimmed view of an execution used in stats.
type ExecutionSummary struct {
	Query           string    `json:"query"`
	QueryKind       string    `json:"queryType"`
	ExecutionTimeMs int64     `json:"executionTime"`
	Status          string    `json:"status"`
	ExecutedAt      time.Time `json:"executedAt"`
}

// Summary converts an execution record to its stats view.
func (e *QueryExecution) Summary() ExecutionSummary {
	return ExecutionSummary{
		Query:           e.Query,
		QueryKind:       e.QueryKind,
		ExecutionTimeMs: e.ExecutionTimeMs,
		Status:          e.Status,
		ExecutedAt:      e.ExecutedAt,
	}
}

// ExecutionFilter narrows execution-history reads.
type ExecutionFilter struct {
	OwnerID      string
	ConnectionID string
	QueryKind    string
	Status       string
}

// DailySummary is one row of the per-day analytics aggregation.
type DailySummary struct {
	Date                 string  `bson:"_id" json:"date"`
	TotalQueries         int64   `bson:"totalQueries" json:"totalQueries"`
	SuccessfulQueries    int64   `bson:"successfulQueries" json:"successfulQueries"`
	FailedQueries        int64   `bson:"failedQueries" json:"failedQueries"`
	AvgExecutionTimeMs   float64 `bson:"avgExecutionTime" json:"avgExecutionTime"`
	TotalExecutionTimeMs float64 `bson:"totalExecutionTime" json:"totalExecutionTime"`
}

// QueryResult is the envelope returned by every dispatched query. Success is
// false exactly when ErrorMessage is set, in which case Data is nil.
type QueryResult struct {
	Success         bool   `json:"success"`
	Data            any    `json:"data,omitempty"`
	ExecutionTimeMs int64  `json:"executionTime"`
	ResultCount     int64  `json:"resultCount"`
	ErrorMessage    string `json:"error,omitempty"`
}
