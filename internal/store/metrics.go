package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dbpulse/dbpulse/internal/models"
)

// MetricStore persists metric samples. Samples are append-only.
type MetricStore struct {
	coll *mongo.Collection
}

// NewMetricStore creates a metric store on the given database.
func NewMetricStore(db *mongo.Database) *MetricStore {
	return &MetricStore{coll: db.Collection(collMetrics)}
}

// Insert appends one sample.
func (s *MetricStore) Insert(ctx context.Context, sample *models.MetricSample) error {
	if sample.ID == "" {
		sample.ID = primitive.NewObjectID().Hex()
	}
	_, err := s.coll.InsertOne(ctx, sample)
	return err
}

// FindRecentByOwner returns the owner's most recent samples, newest first.
func (s *MetricStore) FindRecentByOwner(ctx context.Context, ownerID string, limit int64) ([]models.MetricSample, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.coll.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	var samples []models.MetricSample
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// FindByOwnerAndCollection returns samples recorded for one probe collection.
func (s *MetricStore) FindByOwnerAndCollection(ctx context.Context, ownerID, collection string) ([]models.MetricSample, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"ownerId": ownerID, "collection": collection})
	if err != nil {
		return nil, err
	}
	var samples []models.MetricSample
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}
