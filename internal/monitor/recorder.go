package monitor

import (
	"context"
	"log"
	"time"

	"github.com/dbpulse/dbpulse/internal/models"
)

const recordTimeout = 5 * time.Second

// ExecutionWriter appends query-execution history records.
type ExecutionWriter interface {
	Insert(ctx context.Context, execution *models.QueryExecution) error
}

// Recorder persists execution history off the request path through a
// bounded queue and a single worker. Failures are logged and isolated; they
// can never affect the response that triggered them.
type Recorder struct {
	store ExecutionWriter
	queue chan *models.QueryExecution
	done  chan struct{}
}

// NewRecorder starts the recorder's worker goroutine.
func NewRecorder(store ExecutionWriter, queueSize int) *Recorder {
	r := &Recorder{
		store: store,
		queue: make(chan *models.QueryExecution, queueSize),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues one execution without blocking. When the queue is full the
// record is dropped with a log line rather than stalling the caller.
func (r *Recorder) Record(execution *models.QueryExecution) {
	select {
	case r.queue <- execution:
	default:
		log.Printf("Execution record queue full, dropping record for owner %s", execution.OwnerID)
	}
}

// Stop drains the queue and waits for the worker to finish.
func (r *Recorder) Stop() {
	close(r.queue)
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)
	for execution := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := r.store.Insert(ctx, execution); err != nil {
			log.Printf("Error recording query execution: %v", err)
		}
		cancel()
	}
}
