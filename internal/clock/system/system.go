// Package system provides the wall clock used outside tests.
package system

import (
	"time"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// Precision matches Postgres timestamptz, so job timestamps read back from
// the database compare equal to the values that were written.
const Precision = time.Microsecond

var _ spirits.Clock = Clock{}

// Clock stamps job transitions and stored records with UTC wall time.
type Clock struct{}

// New returns the process wall clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time truncated to Precision.
func (Clock) Now() time.Time {
	return time.Now().UTC().Truncate(Precision)
}
