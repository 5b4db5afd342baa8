package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCancelsLifecycle(t *testing.T) {
	t.Parallel()

	c := NewCancels()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.True(t, c.register("job-1", cancel))
	require.True(t, c.Cancel("job-1"))
	require.Error(t, ctx.Err())

	c.done("job-1")
	require.False(t, c.Cancel("job-1"), "finished jobs are no longer running")
	require.False(t, c.register("job-1", func() {}), "pending request blocks the next start")
	require.True(t, c.register("job-1", func() {}), "request is consumed once")

	require.False(t, c.Cancel("job-2"))
	c.done("job-2")
	require.True(t, c.register("job-2", func() {}), "done clears pending requests")
}
