package registry

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dbpulse/dbpulse/internal/models"
)

const handshakeTimeout = 10 * time.Second

// LiveHandle wraps an open connection to an external database. Handles exist
// only in memory, are owned exclusively by the Registry, and live until an
// explicit Close or process shutdown.
type LiveHandle struct {
	OwnerID      string
	ConnectionID string
	client       *mongo.Client
	databaseName string
}

// NewLiveHandle wraps an already-connected client. Used by the default
// opener; tests inject mock clients through it.
func NewLiveHandle(ownerID, connectionID string, client *mongo.Client, databaseName string) *LiveHandle {
	return &LiveHandle{
		OwnerID:      ownerID,
		ConnectionID: connectionID,
		client:       client,
		databaseName: databaseName,
	}
}

// Collection returns the named collection on the handle's target database.
func (h *LiveHandle) Collection(name string) *mongo.Collection {
	return h.client.Database(h.databaseName).Collection(name)
}

// Close tears down the underlying client connection.
func (h *LiveHandle) Close(ctx context.Context) error {
	if h.client == nil {
		return nil
	}
	return h.client.Disconnect(ctx)
}

// HandleOpener creates a live handle for a connection record. The registry
// uses openMongoHandle by default; tests substitute a fake.
type HandleOpener func(ctx context.Context, record *models.ConnectionRecord) (*LiveHandle, error)

// openMongoHandle dials the record's URI and blocks until the handshake
// completes or fails.
func openMongoHandle(ctx context.Context, record *models.ConnectionRecord) (*LiveHandle, error) {
	if !record.Kind.Openable() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, record.Kind)
	}

	ctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(record.URI))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	return NewLiveHandle(record.OwnerID, record.ID, client, targetDatabaseName(record)), nil
}

// targetDatabaseName prefers the record's explicit database name, falling
// back to the path component of the URI, then the driver default.
func targetDatabaseName(record *models.ConnectionRecord) string {
	if record.DatabaseName != "" {
		return record.DatabaseName
	}
	if u, err := url.Parse(record.URI); err == nil {
		if name := strings.TrimPrefix(u.Path, "/"); name != "" {
			return name
		}
	}
	return "test"
}

// discoverMetadata lists collections and their indexes on a fresh handle.
// Discovery is best-effort: any failure degrades to empty results and never
// fails the surrounding create.
func discoverMetadata(ctx context.Context, handle *LiveHandle) models.ConnectionMetadata {
	metadata := models.ConnectionMetadata{
		Collections: []models.CollectionInfo{},
		Indexes:     map[string][]models.IndexInfo{},
	}
	if handle.client == nil {
		return metadata
	}

	db := handle.client.Database(handle.databaseName)
	cursor, err := db.ListCollections(ctx, bson.M{})
	if err != nil {
		log.Printf("Metadata discovery failed for connection %s: %v", handle.ConnectionID, err)
		return metadata
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var spec struct {
			Name string `bson:"name"`
			Type string `bson:"type"`
		}
		if err := cursor.Decode(&spec); err != nil {
			continue
		}
		metadata.Collections = append(metadata.Collections, models.CollectionInfo{
			Name: spec.Name,
			Type: spec.Type,
		})
	}

	for _, coll := range metadata.Collections {
		indexes, err := listIndexes(ctx, db.Collection(coll.Name))
		if err != nil {
			log.Printf("Index discovery failed for collection %s: %v", coll.Name, err)
			continue
		}
		metadata.Indexes[coll.Name] = indexes
	}

	return metadata
}

func listIndexes(ctx context.Context, coll *mongo.Collection) ([]models.IndexInfo, error) {
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var indexes []models.IndexInfo
	for cursor.Next(ctx) {
		var spec struct {
			Name string `bson:"name"`
			Key  bson.M `bson:"key"`
		}
		if err := cursor.Decode(&spec); err != nil {
			continue
		}
		indexes = append(indexes, models.IndexInfo{Name: spec.Name, Keys: spec.Key})
	}
	return indexes, nil
}
