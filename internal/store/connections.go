package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dbpulse/dbpulse/internal/models"
)

// ConnectionStore persists connection records in the application database.
type ConnectionStore struct {
	coll *mongo.Collection
}

// NewConnectionStore creates a connection store on the given database.
func NewConnectionStore(db *mongo.Database) *ConnectionStore {
	return &ConnectionStore{coll: db.Collection(collConnections)}
}

// Insert stores a new connection record.
func (s *ConnectionStore) Insert(ctx context.Context, record *models.ConnectionRecord) error {
	_, err := s.coll.InsertOne(ctx, record)
	return err
}

// FindByID loads one record by ID, returning (nil, nil) when absent.
func (s *ConnectionStore) FindByID(ctx context.Context, id string) (*models.ConnectionRecord, error) {
	var record models.ConnectionRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByOwner returns the owner's active records, newest first.
func (s *ConnectionStore) FindByOwner(ctx context.Context, ownerID string) ([]models.ConnectionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"ownerId": ownerID, "active": true}, opts)
	if err != nil {
		return nil, err
	}
	var records []models.ConnectionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateLastConnected refreshes the record's last-connected timestamp.
func (s *ConnectionStore) UpdateLastConnected(ctx context.Context, id string, at time.Time) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"lastConnectedAt": at, "updatedAt": at},
	})
	return err
}

// MarkInactive soft-deletes the record. The record itself is never removed.
func (s *ConnectionStore) MarkInactive(ctx context.Context, id string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"active": false, "updatedAt": time.Now().UTC()},
	})
	return err
}
