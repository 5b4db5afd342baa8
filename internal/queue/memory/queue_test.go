package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

func TestQueueEnqueueDequeue(t *testing.T) {
	t.Parallel()

	q := NewQueue(1)
	result := make(chan spirits.QueueItem, 1)
	errCh := make(chan error, 1)

	go func() {
		item, err := q.Dequeue(context.Background())
		if err != nil {
			errCh <- err
			return
		}
		result <- item
	}()

	job := spirits.QueueItem{JobID: "job-1", Params: spirits.JobParameters{Category: "bourbon"}}
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	select {
	case err := <-errCh:
		t.Fatalf("Dequeue() error = %v", err)
	case got := <-result:
		if got.JobID != "job-1" || got.Params.Category != "bourbon" {
			t.Fatalf("expected job-1, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue did not return job")
	}
}

func TestQueueCancelationErrors(t *testing.T) {
	t.Parallel()

	qDequeue := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := qDequeue.Dequeue(ctx); err == nil ||
		err.Error() != "dequeue canceled: context canceled" {
		t.Fatalf("expected dequeue cancel error, got %v", err)
	}

	qEnqueue := NewQueue(1)
	if err := qEnqueue.Enqueue(context.Background(), spirits.QueueItem{JobID: "primed"}); err != nil {
		t.Fatalf("failed to prime enqueue queue: %v", err)
	}
	if err := qEnqueue.Enqueue(ctx, spirits.QueueItem{}); err == nil ||
		err.Error() != "enqueue canceled: context canceled" {
		t.Fatalf("expected enqueue cancel error, got %v", err)
	}
}

func TestQueueTryEnqueue(t *testing.T) {
	t.Parallel()

	q := NewQueue(1)
	if err := q.TryEnqueue(spirits.QueueItem{JobID: "a"}); err != nil {
		t.Fatalf("TryEnqueue() error = %v", err)
	}
	if err := q.TryEnqueue(spirits.QueueItem{JobID: "b"}); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("expected length 1, got %d", q.Len())
	}
}

func TestQueueClose(t *testing.T) {
	t.Parallel()

	q := NewQueue(1)
	q.Close()
	if _, err := q.Dequeue(context.Background()); err == nil || err.Error() != "queue closed" {
		t.Fatalf("expected queue closed error, got %v", err)
	}
	q.Close()
}
