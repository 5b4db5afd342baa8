// Package worker executes queued scrape jobs.
package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/logging"
	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// Runner performs one scrape. onStored is called synchronously after each
// spirit is stored, with counters already updated.
type Runner interface {
	Run(ctx context.Context, params spirits.JobParameters, counters *spirits.JobCounters, onStored func(spirits.Record)) error
}

// Worker consumes queue items and runs them through the Runner.
type Worker struct {
	queue    spirits.Queue
	jobStore spirits.JobStore
	runner   Runner
	cancels  *Cancels
	logger   *zap.Logger
}

// New constructs a Worker. cancels may be shared with the API; nil disables cancellation.
func New(queue spirits.Queue, jobStore spirits.JobStore, runner Runner, cancels *Cancels, logger *zap.Logger) *Worker {
	if cancels == nil {
		cancels = NewCancels()
	}
	return &Worker{
		queue:    queue,
		jobStore: jobStore,
		runner:   runner,
		cancels:  cancels,
		logger:   logging.OrNop(logger),
	}
}

// Run blocks, consuming queue items until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			if err.Error() == "queue closed" {
				return
			}
			continue
		}
		w.logger.Debug("dequeued job", zap.String("job_id", item.JobID))
		w.processJob(ctx, item)
	}
}

func (w *Worker) processJob(ctx context.Context, item spirits.QueueItem) {
	logger := w.logger.With(zap.String("job_id", item.JobID), zap.String("category", item.Params.Category))
	// Status writes outlive job cancellation.
	storeCtx := context.WithoutCancel(ctx)

	if job, err := w.jobStore.GetJob(ctx, item.JobID); err == nil && job.Status.Terminal() {
		logger.Info("skipping job already in terminal state", zap.String("status", string(job.Status)))
		w.cancels.done(item.JobID)
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !w.cancels.register(item.JobID, cancel) {
		w.finish(storeCtx, logger, item.JobID, spirits.JobStatusCanceled, "canceled before start", spirits.JobCounters{})
		return
	}
	defer w.cancels.done(item.JobID)

	if w.runner == nil {
		w.finish(storeCtx, logger, item.JobID, spirits.JobStatusFailed, "no scraper configured", spirits.JobCounters{})
		return
	}

	counters := spirits.JobCounters{}
	if err := w.jobStore.UpdateJobStatus(ctx, item.JobID, spirits.JobStatusRunning, "", counters); err != nil {
		logger.Error("update job status failed", zap.Error(err))
		return
	}
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	onStored := func(rec spirits.Record) {
		if err := w.jobStore.RecordSpirit(storeCtx, item.JobID, rec.ID); err != nil {
			logger.Warn("record job spirit failed", zap.String("spirit_id", rec.ID), zap.Error(err))
		}
		if err := w.jobStore.UpdateJobStatus(storeCtx, item.JobID, spirits.JobStatusRunning, "", counters); err != nil {
			logger.Warn("progress update failed", zap.Error(err))
		}
	}

	logger.Info("scrape started", zap.Int("limit", item.Params.Limit))
	runErr := w.runner.Run(jobCtx, item.Params, &counters, onStored)
	status, errText := deriveFinalStatus(jobCtx, counters, runErr)
	w.finish(storeCtx, logger, item.JobID, status, errText, counters)
}

func (w *Worker) finish(
	ctx context.Context,
	logger *zap.Logger,
	jobID string,
	status spirits.JobStatus,
	errText string,
	counters spirits.JobCounters,
) {
	if err := w.jobStore.UpdateJobStatus(ctx, jobID, status, errText, counters); err != nil {
		logger.Error("final job status update failed", zap.Error(err))
	}
	metrics.ObserveJob(string(status))
	logger.Info("scrape finished",
		zap.String("status", string(status)),
		zap.String("error", errText),
		zap.Int("api_calls", counters.APICalls),
		zap.Int("stored", counters.Stored),
		zap.Int("duplicates", counters.Duplicates),
		zap.Float64("efficiency", counters.Efficiency()),
	)
}

func deriveFinalStatus(ctx context.Context, counters spirits.JobCounters, runErr error) (spirits.JobStatus, string) {
	switch {
	case ctx.Err() != nil || errors.Is(runErr, context.Canceled):
		return spirits.JobStatusCanceled, "job canceled"
	case runErr != nil:
		return spirits.JobStatusFailed, runErr.Error()
	case counters.Results == 0 && counters.CatalogHits == 0:
		return spirits.JobStatusFailed, "no search results were processed"
	default:
		return spirits.JobStatusSucceeded, ""
	}
}
