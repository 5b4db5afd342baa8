package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// JobStore provides an in-memory implementation for development/testing.
type JobStore struct {
	mu      sync.RWMutex
	jobs    map[string]spirits.Job
	spirits map[string][]string
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs:    make(map[string]spirits.Job),
		spirits: make(map[string][]string),
	}
}

// CreateJob stores a new job.
func (s *JobStore) CreateJob(_ context.Context, job spirits.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	s.jobs[job.ID] = job
	return nil
}

// UpdateJobStatus sets status, error text and counters. The first transition
// to running stamps Started; terminal statuses stamp Finished.
func (s *JobStore) UpdateJobStatus(
	_ context.Context,
	jobID string,
	status spirits.JobStatus,
	errText string,
	counters spirits.JobCounters,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, spirits.ErrNotFound)
	}
	job.Status = status
	job.ErrorText = errText
	job.Counters = counters
	job.Counters.TopQueries = maps.Clone(counters.TopQueries)
	now := time.Now().UTC()
	if status == spirits.JobStatusRunning && job.Started == nil {
		job.Started = &now
	}
	if status.Terminal() {
		job.Finished = &now
	}
	s.jobs[jobID] = job
	return nil
}

// RecordSpirit links a stored spirit to the job that found it.
func (s *JobStore) RecordSpirit(_ context.Context, jobID, spiritID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		return fmt.Errorf("job %s: %w", jobID, spirits.ErrNotFound)
	}
	if !slices.Contains(s.spirits[jobID], spiritID) {
		s.spirits[jobID] = append(s.spirits[jobID], spiritID)
	}
	return nil
}

// GetJob fetches a job by ID.
func (s *JobStore) GetJob(_ context.Context, jobID string) (spirits.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return spirits.Job{}, fmt.Errorf("job %s: %w", jobID, spirits.ErrNotFound)
	}
	return job, nil
}

// ListSpirits returns a copy of the spirit IDs recorded for a job.
func (s *JobStore) ListSpirits(_ context.Context, jobID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.spirits[jobID]), nil
}
