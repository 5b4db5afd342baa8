package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func TestTrackerConsume(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 3, 1, 22, 0, 0, 0, time.UTC)}
	tr := NewTracker(2, clock)

	require.NoError(t, tr.Consume())
	require.NoError(t, tr.Consume())
	require.ErrorIs(t, tr.Consume(), ErrExhausted)
	assert.Equal(t, 2, tr.Used())
	assert.Equal(t, 0, tr.Remaining())
}

func TestTrackerResetsAtMidnightUTC(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)}
	tr := NewTracker(1, clock)
	require.NoError(t, tr.Consume())
	require.ErrorIs(t, tr.Consume(), ErrExhausted)

	clock.now = time.Date(2025, 3, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 0, tr.Used())
	assert.Equal(t, 1, tr.Remaining())
	require.NoError(t, tr.Consume())
}

func TestTrackerUnlimited(t *testing.T) {
	t.Parallel()

	tr := NewTracker(0, &fakeClock{now: time.Now()})
	for range 5 {
		require.NoError(t, tr.Consume())
	}
	assert.Equal(t, 5, tr.Used())
	assert.Equal(t, -1, tr.Remaining())
	assert.Equal(t, 0, tr.Limit())
}
