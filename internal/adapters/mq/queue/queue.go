// Package queue defines the contract for buffering submitted comparisons
// between the ingest path and the rating workers.
package queue

import (
	"context"
	"sync"

	"github.com/bodi/pairrank/internal/domain/model"
	"github.com/bodi/pairrank/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 100_000
)

// Comparison is the payload type flowing through the queue.
type Comparison = model.Comparison

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a comparison to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, c Comparison) bool

	// Dequeue returns a channel that receives comparisons as they become
	// available. The channel closes when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Comparison

	// Len returns the current number of queued comparisons.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new comparisons can
	// be enqueued; queued ones are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	comparisons chan Comparison
	capacity    int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates an in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.comparisons = make(chan Comparison, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a comparison to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Comparison) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.comparisons <- c:
		metrics.RecordQueueEnqueue()
		size := len(q.comparisons)
		metrics.UpdateQueueSize(size)
		metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		// Queue is full.
		metrics.RecordQueueEnqueueError()
		return false
	}
}

// Dequeue returns a channel that delivers comparisons until the queue is
// closed and drained or ctx is cancelled.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Comparison {
	out := make(chan Comparison)
	go func() {
		defer close(out)
		for {
			select {
			case c, ok := <-q.comparisons:
				if !ok {
					return
				}
				select {
				case out <- c:
					metrics.RecordQueueDequeue()
					size := len(q.comparisons)
					metrics.UpdateQueueSize(size)
					metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued comparisons.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.comparisons)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.comparisons)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
