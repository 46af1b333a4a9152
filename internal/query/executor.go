package query

import (
	"context"
	"time"

	"github.com/dbpulse/dbpulse/internal/models"
	"github.com/dbpulse/dbpulse/internal/registry"
)

// Executor dispatches parsed requests against live handles and wraps every
// outcome in a result envelope.
type Executor struct{}

// NewExecutor creates a query executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Run executes the request against the handle's target collection. Execution
// time covers the driver call inclusive of the failure path and is always
// reported. Driver failures are captured verbatim into the envelope with
// Success=false; Run never returns an error past this boundary.
func (e *Executor) Run(ctx context.Context, handle *registry.LiveHandle, req *Request) *models.QueryResult {
	start := time.Now()
	data, count, err := dispatch(ctx, handle, req)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return &models.QueryResult{
			Success:         false,
			ExecutionTimeMs: elapsed,
			ErrorMessage:    err.Error(),
		}
	}

	return &models.QueryResult{
		Success:         true,
		Data:            data,
		ExecutionTimeMs: elapsed,
		ResultCount:     count,
	}
}

func dispatch(ctx context.Context, handle *registry.LiveHandle, req *Request) (any, int64, error) {
	coll := handle.Collection(req.Collection)

	switch req.Kind {
	case KindFind:
		cursor, err := coll.Find(ctx, req.Filter)
		if err != nil {
			return nil, 0, err
		}
		var docs []map[string]any
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, 0, err
		}
		return docs, int64(len(docs)), nil

	case KindAggregate:
		cursor, err := coll.Aggregate(ctx, req.Pipeline)
		if err != nil {
			return nil, 0, err
		}
		var docs []map[string]any
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, 0, err
		}
		return docs, int64(len(docs)), nil

	case KindInsert:
		result, err := coll.InsertMany(ctx, req.Insert)
		if err != nil {
			return nil, 0, err
		}
		return result, int64(len(result.InsertedIDs)), nil

	case KindUpdate:
		result, err := coll.UpdateMany(ctx, req.Update.Filter, req.Update.Update)
		if err != nil {
			return nil, 0, err
		}
		return result, result.ModifiedCount, nil

	case KindDelete:
		result, err := coll.DeleteMany(ctx, req.Filter)
		if err != nil {
			return nil, 0, err
		}
		return result, result.DeletedCount, nil

	default:
		// Parse rejects unknown kinds; this guards direct construction.
		return nil, 0, ErrUnsupportedKind
	}
}
