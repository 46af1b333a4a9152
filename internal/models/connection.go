package models

import (
	"time"
)

// DatabaseKind identifies the engine behind a registered connection.
// Only MongoDB connections can currently be opened; the remaining kinds are
// accepted by the parser so stored records round-trip, but opening them
// fails with an unsupported-kind error.
type DatabaseKind string

const (
	KindMongoDB    DatabaseKind = "mongodb"
	KindMySQL      DatabaseKind = "mysql"
	KindPostgreSQL DatabaseKind = "postgresql"
	KindSQLite     DatabaseKind = "sqlite"
)

// ParseDatabaseKind maps a wire string onto the closed kind set.
func ParseDatabaseKind(s string) (DatabaseKind, bool) {
	switch DatabaseKind(s) {
	case KindMongoDB, KindMySQL, KindPostgreSQL, KindSQLite:
		return DatabaseKind(s), true
	default:
		return "", false
	}
}

// Openable reports whether live handles can be created for this kind.
func (k DatabaseKind) Openable() bool {
	return k == KindMongoDB
}

// CollectionInfo describes one collection discovered at connection time.
type CollectionInfo struct {
	Name string `bson:"name" json:"name"`
	Type string `bson:"type" json:"type"`
}

// IndexInfo describes one index on a discovered collection.
type IndexInfo struct {
	Name string         `bson:"name" json:"name"`
	Keys map[string]any `bson:"keys" json:"keys"`
}

// ConnectionMetadata holds what was discovered when the connection was first
// opened. Populated once at creation time; discovery failures leave it empty.
type ConnectionMetadata struct {
	Collections []CollectionInfo       `bson:"collections" json:"collections"`
	Indexes     map[string][]IndexInfo `bson:"indexes" json:"indexes"`
}

// ConnectionRecord is the durable description of one external database
// binding. The URI carries credentials and is never included in API
// responses after creation.
type ConnectionRecord struct {
	ID              string             `bson:"_id" json:"connectionId"`
	OwnerID         string             `bson:"ownerId" json:"ownerId"`
	Name            string             `bson:"name" json:"connectionName"`
	Kind            DatabaseKind       `bson:"kind" json:"databaseType"`
	URI             string             `bson:"uri" json:"-"`
	Host            string             `bson:"host,omitempty" json:"host,omitempty"`
	Port            int                `bson:"port,omitempty" json:"port,omitempty"`
	DatabaseName    string             `bson:"databaseName,omitempty" json:"databaseName,omitempty"`
	Username        string             `bson:"username,omitempty" json:"username,omitempty"`
	Active          bool               `bson:"active" json:"isActive"`
	LastConnectedAt time.Time          `bson:"lastConnectedAt" json:"lastConnected"`
	Metadata        ConnectionMetadata `bson:"metadata" json:"metadata"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ConnectionInfo is the non-sensitive subset of a record returned by stats.
type ConnectionInfo struct {
	Name          string       `json:"connectionName"`
	Kind          DatabaseKind `json:"databaseType"`
	DatabaseName  string       `json:"databaseName"`
	LastConnected time.Time    `json:"lastConnected"`
}

// ConnectionStats aggregates a connection's metadata with its recent
// execution history.
type ConnectionStats struct {
	ConnectionInfo         ConnectionInfo     `json:"connectionInfo"`
	RecentQueries          []ExecutionSummary `json:"recentQueries"`
	TotalQueries           int64              `json:"totalQueries"`
	AverageExecutionTimeMs float64            `json:"averageExecutionTime"`
}
