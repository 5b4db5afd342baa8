// Package memory provides the bounded in-process job queue.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// ErrFull is returned by TryEnqueue when the queue has no free slot.
var ErrFull = errors.New("queue full")

// Queue is a bounded in-memory queue with context-aware operations.
type Queue struct {
	ch      chan spirits.QueueItem
	closeMu sync.Mutex
	closed  bool
}

// NewQueue constructs a new queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch: make(chan spirits.QueueItem, capacity),
	}
}

// Enqueue pushes a job into the queue or returns if the context ends.
func (q *Queue) Enqueue(ctx context.Context, job spirits.QueueItem) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- job:
		return nil
	}
}

// TryEnqueue pushes a job without blocking, returning ErrFull when at capacity.
func (q *Queue) TryEnqueue(job spirits.QueueItem) error {
	select {
	case q.ch <- job:
		return nil
	default:
		return ErrFull
	}
}

// Dequeue pops the next job, respecting context cancellation.
func (q *Queue) Dequeue(ctx context.Context) (spirits.QueueItem, error) {
	select {
	case <-ctx.Done():
		return spirits.QueueItem{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case job, ok := <-q.ch:
		if !ok {
			return spirits.QueueItem{}, errors.New("queue closed")
		}
		return job, nil
	}
}

// Len reports how many jobs are waiting.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close closes the underlying channel for shutdown.
func (q *Queue) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
