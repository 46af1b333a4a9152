// Package store persists application state (users, connection records,
// query executions, metric samples) in the application's own MongoDB.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	collUsers       = "users"
	collConnections = "databaseconnections"
	collExecutions  = "queryexecutions"
	collMetrics     = "queries"
)

const connectTimeout = 10 * time.Second

// Connect dials the application database and verifies the connection.
func Connect(ctx context.Context, uri, databaseName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: pinging mongodb: %w", err)
	}

	log.Printf("Connected to application database (%s)", databaseName)
	return client.Database(databaseName), nil
}

// Disconnect tears down the client behind the database.
func Disconnect(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}
