// Package worker runs the pool that drains the comparison queue and
// applies incremental rating updates.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/bodi/pairrank/internal/adapters/mq/queue"
	"github.com/bodi/pairrank/internal/domain/model"
	"github.com/bodi/pairrank/pkg/logger"
	"github.com/bodi/pairrank/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Comparison is what workers read off the queue.
type Comparison = queue.Comparison

// Applier folds one comparison into the live rating state and returns the
// ratings it touched.
type Applier interface {
	ApplyComparison(ctx context.Context, c model.Comparison) ([]model.Rating, error)
}

// Upserter persists updated ratings.
type Upserter interface {
	Upsert(ctx context.Context, ratings ...model.Rating) error
}

// Queue defines how workers receive comparisons.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Comparison
}

// Worker processes comparisons until stopped.
type Worker struct {
	queue   Queue
	applier Applier
	upserts Upserter
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a single worker with configuration options.
func NewWorker(queue Queue, applier Applier, upserts Upserter, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		applier:  applier,
		upserts:  upserts,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop and blocks until ctx is cancelled, the queue
// drains after close, or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	comparisons := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case c, ok := <-comparisons:
			if !ok {
				return
			}
			if err := w.process(ctx, c); err != nil {
				w.logger.Error(ctx, "error processing comparison", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker and waits for the in-flight comparison.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process applies a single comparison and persists the touched ratings.
func (w *Worker) process(ctx context.Context, c Comparison) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	}()

	updated, err := w.applier.ApplyComparison(ctx, c)
	if err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "incremental update failed",
			logger.String("comparisonID", c.ID),
			logger.String("winner", c.WinnerID),
			logger.String("loser", c.LoserID),
			logger.Error(err),
		)
		return fmt.Errorf("apply comparison %s: %w", c.ID, err)
	}

	if err := w.upserts.Upsert(ctx, updated...); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("persist ratings for comparison %s: %w", c.ID, err)
	}

	metrics.RecordIncrementalUpdate()
	return nil
}

// Pool manages a set of workers sharing one queue.
type Pool struct {
	workers []*Worker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a worker pool draining the queue into the applier.
func NewPool(workerCount int, queue Queue, applier Applier, upserts Upserter) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(queue, applier, upserts, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits briefly for each to finish. Stop is
// called at most once, by the owning service.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		close(w.shutdown)
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue, then waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
