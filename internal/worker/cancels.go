package worker

import (
	"context"
	"sync"
)

// Cancels tracks the cancel functions of running jobs so the API can stop them.
// A cancel requested before the job starts is remembered until it does.
type Cancels struct {
	mu        sync.Mutex
	running   map[string]context.CancelFunc
	requested map[string]struct{}
}

// NewCancels returns an empty registry.
func NewCancels() *Cancels {
	return &Cancels{
		running:   make(map[string]context.CancelFunc),
		requested: make(map[string]struct{}),
	}
}

// Cancel stops jobID if it is running and reports whether it was.
func (c *Cancels) Cancel(jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.running[jobID]; ok {
		cancel()
		return true
	}
	c.requested[jobID] = struct{}{}
	return false
}

// register records cancel for jobID. It reports false when a cancel was
// already requested, in which case the job must not start.
func (c *Cancels) register(jobID string, cancel context.CancelFunc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.requested[jobID]; ok {
		delete(c.requested, jobID)
		return false
	}
	c.running[jobID] = cancel
	return true
}

// done forgets jobID, including any pending request for it.
func (c *Cancels) done(jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.running, jobID)
	delete(c.requested, jobID)
}
