package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dbpulse/dbpulse/internal/models"
)

// ExecutionStore persists query-execution history.
type ExecutionStore struct {
	coll *mongo.Collection
}

// NewExecutionStore creates an execution store on the given database.
func NewExecutionStore(db *mongo.Database) *ExecutionStore {
	return &ExecutionStore{coll: db.Collection(collExecutions)}
}

// Insert appends one execution record.
func (s *ExecutionStore) Insert(ctx context.Context, execution *models.QueryExecution) error {
	doc := bson.M{
		"ownerId":       execution.OwnerID,
		"connectionId":  execution.ConnectionID,
		"query":         execution.Query,
		"queryType":     execution.QueryKind,
		"collection":    execution.Collection,
		"database":      execution.Database,
		"executionTime": execution.ExecutionTimeMs,
		"status":        execution.Status,
		"resultCount":   execution.ResultCount,
		"errorMessage":  execution.ErrorMessage,
		"systemMetrics": execution.SystemMetrics,
		"executedAt":    execution.ExecutedAt,
	}
	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

// FindRecent returns the most recent executions for a connection, newest
// first.
func (s *ExecutionStore) FindRecent(ctx context.Context, ownerID, connectionID string, limit int64) ([]models.QueryExecution, error) {
	filter := models.ExecutionFilter{OwnerID: ownerID, ConnectionID: connectionID}
	return s.Find(ctx, filter, 0, limit)
}

// Find returns filtered executions sorted by execution time descending.
func (s *ExecutionStore) Find(ctx context.Context, filter models.ExecutionFilter, skip, limit int64) ([]models.QueryExecution, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "executedAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := s.coll.Find(ctx, executionFilterDoc(filter), opts)
	if err != nil {
		return nil, err
	}
	var executions []models.QueryExecution
	if err := cursor.All(ctx, &executions); err != nil {
		return nil, err
	}
	return executions, nil
}

// Count returns the number of executions matching the filter.
func (s *ExecutionStore) Count(ctx context.Context, filter models.ExecutionFilter) (int64, error) {
	return s.coll.CountDocuments(ctx, executionFilterDoc(filter))
}

// AverageExecutionTime averages successful execution times for a connection.
// Returns 0 when no successful executions exist.
func (s *ExecutionStore) AverageExecutionTime(ctx context.Context, ownerID, connectionID string) (float64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"ownerId":      ownerID,
			"connectionId": connectionID,
			"status":       models.ExecutionStatusSuccess,
		}},
		{"$group": bson.M{
			"_id":     nil,
			"avgTime": bson.M{"$avg": "$executionTime"},
		}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var rows []struct {
		AvgTime float64 `bson:"avgTime"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].AvgTime, nil
}

// DailySummaries groups the owner's executions since the given date by day,
// splitting counts by status and aggregating execution time.
func (s *ExecutionStore) DailySummaries(ctx context.Context, ownerID string, since int) ([]models.DailySummary, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"ownerId":    ownerID,
			"executedAt": bson.M{"$gte": daysAgo(since)},
		}},
		{"$group": bson.M{
			"_id": bson.M{
				"date": bson.M{"$dateToString": bson.M{
					"format": "%Y-%m-%d",
					"date":   "$executedAt",
				}},
				"status": "$status",
			},
			"count":              bson.M{"$sum": 1},
			"avgExecutionTime":   bson.M{"$avg": "$executionTime"},
			"totalExecutionTime": bson.M{"$sum": "$executionTime"},
		}},
		{"$group": bson.M{
			"_id":          "$_id.date",
			"totalQueries": bson.M{"$sum": "$count"},
			"successfulQueries": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$_id.status", models.ExecutionStatusSuccess}}, "$count", 0},
			}},
			"failedQueries": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$_id.status", models.ExecutionStatusError}}, "$count", 0},
			}},
			"avgExecutionTime":   bson.M{"$avg": "$avgExecutionTime"},
			"totalExecutionTime": bson.M{"$sum": "$totalExecutionTime"},
		}},
		{"$sort": bson.M{"_id": 1}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var summaries []models.DailySummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func daysAgo(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -days)
}

func executionFilterDoc(filter models.ExecutionFilter) bson.M {
	doc := bson.M{"ownerId": filter.OwnerID}
	if filter.ConnectionID != "" {
		doc["connectionId"] = filter.ConnectionID
	}
	if filter.QueryKind != "" {
		doc["queryType"] = filter.QueryKind
	}
	if filter.Status != "" {
		doc["status"] = filter.Status
	}
	return doc
}
