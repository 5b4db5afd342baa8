package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	queuememory "github.com/JakeFAU/spirits-scraper/internal/queue/memory"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
	storememory "github.com/JakeFAU/spirits-scraper/internal/storage/memory"
)

type runFunc func(ctx context.Context, params spirits.JobParameters, counters *spirits.JobCounters, onStored func(spirits.Record)) error

func (f runFunc) Run(ctx context.Context, params spirits.JobParameters, counters *spirits.JobCounters, onStored func(spirits.Record)) error {
	return f(ctx, params, counters, onStored)
}

func startWorker(t *testing.T, runner Runner, cancels *Cancels, jobIDs ...string) *storememory.JobStore {
	t.Helper()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	queue := queuememory.NewQueue(len(jobIDs))
	jobs := storememory.NewJobStore()
	for _, id := range jobIDs {
		params := spirits.JobParameters{Category: "bourbon", Limit: 5}
		require.NoError(t, jobs.CreateJob(ctx, spirits.Job{ID: id, Status: spirits.JobStatusQueued, Parameters: params}))
		require.NoError(t, queue.Enqueue(ctx, spirits.QueueItem{JobID: id, Params: params}))
	}
	w := New(queue, jobs, runner, cancels, zap.NewNop())
	go w.Run(ctx)
	return jobs
}

func waitStatus(t *testing.T, jobs *storememory.JobStore, jobID string, want spirits.JobStatus) spirits.Job {
	t.Helper()
	var job spirits.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = jobs.GetJob(context.Background(), jobID)
		return err == nil && job.Status == want
	}, time.Second, 10*time.Millisecond)
	return job
}

func TestWorker_SuccessRecordsSpirits(t *testing.T) {
	t.Parallel()

	runner := runFunc(func(_ context.Context, params spirits.JobParameters, counters *spirits.JobCounters, onStored func(spirits.Record)) error {
		if params.Category != "bourbon" {
			return errors.New("unexpected category " + params.Category)
		}
		counters.APICalls = 2
		counters.Results = 12
		for _, id := range []string{"spirit-1", "spirit-2"} {
			counters.Stored++
			onStored(spirits.Record{ID: id})
		}
		return nil
	})

	jobs := startWorker(t, runner, nil, "job-ok")
	job := waitStatus(t, jobs, "job-ok", spirits.JobStatusSucceeded)

	require.Equal(t, 2, job.Counters.Stored)
	require.Equal(t, 2, job.Counters.APICalls)
	require.NotNil(t, job.Started)
	require.NotNil(t, job.Finished)

	ids, err := jobs.ListSpirits(context.Background(), "job-ok")
	require.NoError(t, err)
	require.Equal(t, []string{"spirit-1", "spirit-2"}, ids)
}

func TestWorker_RunnerErrorFailsJob(t *testing.T) {
	t.Parallel()

	runner := runFunc(func(context.Context, spirits.JobParameters, *spirits.JobCounters, func(spirits.Record)) error {
		return errors.New("search rate limited")
	})

	jobs := startWorker(t, runner, nil, "job-err")
	job := waitStatus(t, jobs, "job-err", spirits.JobStatusFailed)
	require.Equal(t, "search rate limited", job.ErrorText)
}

func TestWorker_NoResultsFailsJob(t *testing.T) {
	t.Parallel()

	runner := runFunc(func(_ context.Context, _ spirits.JobParameters, counters *spirits.JobCounters, _ func(spirits.Record)) error {
		counters.APICalls = 3
		return nil
	})

	jobs := startWorker(t, runner, nil, "job-empty")
	job := waitStatus(t, jobs, "job-empty", spirits.JobStatusFailed)
	require.Equal(t, "no search results were processed", job.ErrorText)
}

func TestWorker_CancelRunningJob(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	runner := runFunc(func(ctx context.Context, _ spirits.JobParameters, counters *spirits.JobCounters, _ func(spirits.Record)) error {
		counters.Results = 1
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	cancels := NewCancels()
	jobs := startWorker(t, runner, cancels, "job-cancel")

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("runner did not start")
	}
	require.True(t, cancels.Cancel("job-cancel"))
	waitStatus(t, jobs, "job-cancel", spirits.JobStatusCanceled)
}

func TestWorker_CancelBeforeStart(t *testing.T) {
	t.Parallel()

	called := make(chan struct{}, 1)
	runner := runFunc(func(context.Context, spirits.JobParameters, *spirits.JobCounters, func(spirits.Record)) error {
		called <- struct{}{}
		return nil
	})

	cancels := NewCancels()
	require.False(t, cancels.Cancel("job-early"))
	jobs := startWorker(t, runner, cancels, "job-early")

	waitStatus(t, jobs, "job-early", spirits.JobStatusCanceled)
	require.Empty(t, called)
}

func TestWorker_SkipsTerminalJobs(t *testing.T) {
	t.Parallel()

	called := make(chan struct{}, 1)
	runner := runFunc(func(context.Context, spirits.JobParameters, *spirits.JobCounters, func(spirits.Record)) error {
		called <- struct{}{}
		return nil
	})

	metrics.Init()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := queuememory.NewQueue(2)
	jobs := storememory.NewJobStore()
	require.NoError(t, jobs.CreateJob(ctx, spirits.Job{ID: "done", Status: spirits.JobStatusCanceled}))
	require.NoError(t, queue.Enqueue(ctx, spirits.QueueItem{JobID: "done"}))

	w := New(queue, jobs, runner, nil, zap.NewNop())
	go w.Run(ctx)

	require.Eventually(t, func() bool { return queue.Len() == 0 }, time.Second, 10*time.Millisecond)
	require.Never(t, func() bool { return len(called) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestDeriveFinalStatus(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		counters spirits.JobCounters
		err      error
		want     spirits.JobStatus
	}{
		{name: "success", ctx: context.Background(), counters: spirits.JobCounters{Results: 4}, want: spirits.JobStatusSucceeded},
		{name: "catalog only", ctx: context.Background(), counters: spirits.JobCounters{CatalogHits: 1}, want: spirits.JobStatusSucceeded},
		{name: "no results", ctx: context.Background(), want: spirits.JobStatusFailed},
		{name: "error", ctx: context.Background(), counters: spirits.JobCounters{Results: 4}, err: errors.New("x"), want: spirits.JobStatusFailed},
		{name: "canceled", ctx: canceled, counters: spirits.JobCounters{Results: 4}, want: spirits.JobStatusCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _ := deriveFinalStatus(tt.ctx, tt.counters, tt.err)
			require.Equal(t, tt.want, got)
		})
	}
}
