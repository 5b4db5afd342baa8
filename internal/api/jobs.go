package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/scraper"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// MaxJobLimit caps the spirits a single job may store.
const MaxJobLimit = 1000

type jobRequest struct {
	Category   string   `json:"category"`
	Limit      *int     `json:"limit"`
	Queries    []string `json:"queries"`
	MaxQueries *int     `json:"max_queries"`
}

func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	params, err := s.toJobParameters(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	jobID, err := s.enqueueJob(r.Context(), params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Error("submit job failed", zap.Error(err))
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID, "status": string(spirits.JobStatusQueued)})
}

func (s *Server) toJobParameters(req jobRequest) (spirits.JobParameters, error) {
	params := spirits.JobParameters{
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		Limit:    valueOrDefault(req.Limit, scraper.DefaultLimit),
	}
	if params.Category == "" {
		return spirits.JobParameters{}, errors.New("category required")
	}
	if s.deps.Policy != nil && !s.deps.Policy.AllowCategory(params.Category) {
		return spirits.JobParameters{}, fmt.Errorf("category %q not enabled (allowed: %s)",
			params.Category, strings.Join(s.deps.Policy.Categories(), ", "))
	}
	if params.Limit <= 0 || params.Limit > MaxJobLimit {
		return spirits.JobParameters{}, fmt.Errorf("limit must be between 1 and %d", MaxJobLimit)
	}
	for _, q := range req.Queries {
		if q = strings.TrimSpace(q); q != "" {
			params.Queries = append(params.Queries, q)
		}
	}
	params.MaxQueries = valueOrDefault(req.MaxQueries, s.cfg.Scraper.MaxQueries)
	if params.MaxQueries < 0 {
		return spirits.JobParameters{}, errors.New("max_queries must be >= 0")
	}
	return params, nil
}

func (s *Server) enqueueJob(ctx context.Context, params spirits.JobParameters) (string, error) {
	jobID, err := s.deps.IDGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate job id: %w", err)
	}
	now := s.deps.Clock.Now()
	job := spirits.Job{
		ID:         jobID,
		Status:     spirits.JobStatusQueued,
		Submitted:  now,
		Parameters: params,
	}
	if err := s.deps.JobStore.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	queueCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	item := spirits.QueueItem{
		JobID:     jobID,
		Params:    params,
		Attempt:   1,
		Submitted: now.Unix(),
	}
	if err := s.deps.Queue.Enqueue(queueCtx, item); err != nil {
		if uerr := s.deps.JobStore.UpdateJobStatus(context.WithoutCancel(ctx), jobID, spirits.JobStatusFailed,
			"queue unavailable", spirits.JobCounters{}); uerr != nil {
			s.logger.Warn("mark unqueued job failed", zap.String("job_id", jobID), zap.Error(uerr))
		}
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	s.logger.Info("job queued", zap.String("job_id", jobID), zap.String("category", params.Category), zap.Int("limit", params.Limit))
	return jobID, nil
}

func (s *Server) lookupJob(w http.ResponseWriter, r *http.Request) (spirits.Job, bool) {
	job, err := s.deps.JobStore.GetJob(r.Context(), chi.URLParam(r, "job_id"))
	switch {
	case err == nil:
		return job, true
	case errors.Is(err, spirits.ErrNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	default:
		s.logger.Error("get job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch job")
	}
	return spirits.Job{}, false
}

func (s *Server) getJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (s *Server) getJobResult(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	ids, err := s.deps.JobStore.ListSpirits(r.Context(), job.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch job spirits")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, spirits.JobResult{
		Job:        job,
		SpiritIDs:  ids,
		Efficiency: job.Counters.Efficiency(),
	})
}

// cancelJob stops a running job through the worker, or marks a queued job
// canceled so the worker skips it.
func (s *Server) cancelJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	if job.Status.Terminal() {
		writeError(w, http.StatusConflict, fmt.Sprintf("job already %s", job.Status))
		return
	}
	if s.deps.Cancels != nil && s.deps.Cancels.Cancel(job.ID) {
		writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID, "status": "canceling"})
		return
	}
	if err := s.deps.JobStore.UpdateJobStatus(r.Context(), job.ID, spirits.JobStatusCanceled,
		"canceled via API", job.Counters); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cancel job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": job.ID, "status": string(spirits.JobStatusCanceled)})
}

func valueOrDefault[T any](ptr *T, def T) T {
	if ptr == nil {
		return def
	}
	return *ptr
}
