package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// JobStore implements spirits.JobStore on Postgres. Parameters and counters
// are stored as JSONB.
type JobStore struct {
	pool       pool
	jobs       string
	jobSpirits string
}

// NewJobStore wraps an open pool. Empty table names select the defaults.
func NewJobStore(p pool, jobsTable, jobSpiritsTable string) (*JobStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if jobsTable == "" {
		jobsTable = "scrape_jobs"
	}
	if jobSpiritsTable == "" {
		jobSpiritsTable = "scrape_job_spirits"
	}
	if err := checkTables(jobsTable, jobSpiritsTable); err != nil {
		return nil, err
	}
	return &JobStore{pool: p, jobs: jobsTable, jobSpirits: jobSpiritsTable}, nil
}

// CreateJob inserts a job row.
func (s *JobStore) CreateJob(ctx context.Context, job spirits.Job) error {
	params, err := json.Marshal(job.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}
	counters, err := json.Marshal(job.Counters)
	if err != nil {
		return fmt.Errorf("marshal counters: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, status, submitted_at, parameters, counters)
VALUES ($1, $2, $3, $4, $5)`, s.jobs)
	if _, err := s.pool.Exec(ctx, query, job.ID, string(job.Status), job.Submitted, params, counters); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// UpdateJobStatus sets status, error text and counters. The first transition
// to running stamps started_at; terminal statuses stamp finished_at.
func (s *JobStore) UpdateJobStatus(
	ctx context.Context,
	jobID string,
	status spirits.JobStatus,
	errText string,
	counters spirits.JobCounters,
) error {
	raw, err := json.Marshal(counters)
	if err != nil {
		return fmt.Errorf("marshal counters: %w", err)
	}
	query := fmt.Sprintf(`
UPDATE %s SET
	status = $1,
	error_text = $2,
	counters = $3,
	started_at = CASE WHEN $1 = 'running' THEN coalesce(started_at, now()) ELSE started_at END,
	finished_at = CASE WHEN $4 THEN now() ELSE finished_at END
WHERE id = $5`, s.jobs)
	tag, err := s.pool.Exec(ctx, query, string(status), errText, raw, status.Terminal(), jobID)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", jobID, spirits.ErrNotFound)
	}
	return nil
}

// RecordSpirit links a stored spirit to its job.
func (s *JobStore) RecordSpirit(ctx context.Context, jobID, spiritID string) error {
	query := fmt.Sprintf(`INSERT INTO %s (job_id, spirit_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, s.jobSpirits)
	if _, err := s.pool.Exec(ctx, query, jobID, spiritID); err != nil {
		return fmt.Errorf("record job spirit: %w", err)
	}
	return nil
}

// GetJob loads a job by ID.
func (s *JobStore) GetJob(ctx context.Context, jobID string) (spirits.Job, error) {
	query := fmt.Sprintf(`
SELECT id, status, submitted_at, started_at, finished_at, coalesce(error_text, ''), parameters, counters
FROM %s WHERE id = $1`, s.jobs)
	var (
		job               spirits.Job
		status            string
		started, finished pgtype.Timestamptz
		params, counters  []byte
	)
	err := s.pool.QueryRow(ctx, query, jobID).Scan(
		&job.ID,
		&status,
		&job.Submitted,
		&started,
		&finished,
		&job.ErrorText,
		&params,
		&counters,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return spirits.Job{}, fmt.Errorf("job %s: %w", jobID, spirits.ErrNotFound)
		}
		return spirits.Job{}, fmt.Errorf("get job: %w", err)
	}
	job.Status = spirits.JobStatus(status)
	if started.Valid {
		job.Started = &started.Time
	}
	if finished.Valid {
		job.Finished = &finished.Time
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &job.Parameters); err != nil {
			return spirits.Job{}, fmt.Errorf("decode parameters: %w", err)
		}
	}
	if len(counters) > 0 {
		if err := json.Unmarshal(counters, &job.Counters); err != nil {
			return spirits.Job{}, fmt.Errorf("decode counters: %w", err)
		}
	}
	return job, nil
}

// ListSpirits returns the spirit IDs recorded for a job in insertion order.
func (s *JobStore) ListSpirits(ctx context.Context, jobID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT spirit_id FROM %s WHERE job_id = $1 ORDER BY recorded_at`, s.jobSpirits)
	rows, err := s.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job spirits: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan job spirit: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list job spirits: %w", err)
	}
	return ids, nil
}
