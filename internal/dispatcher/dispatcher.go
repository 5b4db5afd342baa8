// Package dispatcher fans scrape jobs out to a fixed pool of workers.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
	"github.com/JakeFAU/spirits-scraper/internal/worker"
)

// Dispatcher fans out queue work to a pool of workers.
type Dispatcher struct {
	queue   spirits.Queue
	workers []*worker.Worker
}

// New creates a Dispatcher.
func New(queue spirits.Queue, workers []*worker.Worker) *Dispatcher {
	return &Dispatcher{
		queue:   queue,
		workers: workers,
	}
}

// Run starts all workers and blocks until the context finishes.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range d.workers {
		wg.Go(func() { w.Run(ctx) })
	}
	<-ctx.Done()
	wg.Wait()
}

// Workers reports the pool size.
func (d *Dispatcher) Workers() int {
	return len(d.workers)
}

// Enqueue proxies to the underlying queue.
func (d *Dispatcher) Enqueue(ctx context.Context, item spirits.QueueItem) error {
	if err := d.queue.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("queue enqueue: %w", err)
	}
	return nil
}
