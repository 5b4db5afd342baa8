// Package quota tracks the daily search API call budget.
package quota

import (
	"errors"
	"sync"
	"time"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// ErrExhausted is returned once the day's calls are used up.
var ErrExhausted = errors.New("daily search quota exhausted")

// Tracker counts calls per UTC day against a fixed limit.
type Tracker struct {
	mu    sync.Mutex
	clock spirits.Clock
	limit int
	used  int
	day   time.Time
}

// NewTracker builds a Tracker. A non-positive limit never exhausts.
func NewTracker(limit int, clock spirits.Clock) *Tracker {
	return &Tracker{clock: clock, limit: limit, day: today(clock)}
}

// Consume records one call, or returns ErrExhausted without recording it.
func (t *Tracker) Consume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.roll()
	if t.limit > 0 && t.used >= t.limit {
		return ErrExhausted
	}
	t.used++
	return nil
}

// Used returns the calls recorded today.
func (t *Tracker) Used() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.roll()
	return t.used
}

// Remaining returns the calls left today, or -1 when unlimited.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.roll()
	if t.limit <= 0 {
		return -1
	}
	return max(0, t.limit-t.used)
}

// Limit returns the daily limit.
func (t *Tracker) Limit() int {
	return t.limit
}

// roll resets the count when the clock has crossed midnight UTC. Callers hold mu.
func (t *Tracker) roll() {
	if d := today(t.clock); d.After(t.day) {
		t.day = d
		t.used = 0
	}
}

func today(clock spirits.Clock) time.Time {
	return clock.Now().UTC().Truncate(24 * time.Hour)
}
