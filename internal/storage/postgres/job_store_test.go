package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

func newMockJobStore(t *testing.T) (*JobStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewJobStore(mock, "", "")
	require.NoError(t, err)
	return store, mock
}

func TestCreateJob(t *testing.T) {
	t.Parallel()

	store, mock := newMockJobStore(t)
	submitted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	job := spirits.Job{
		ID:         "job-1",
		Status:     spirits.JobStatusQueued,
		Submitted:  submitted,
		Parameters: spirits.JobParameters{Category: "bourbon", Limit: 50},
	}
	params, err := json.Marshal(job.Parameters)
	require.NoError(t, err)
	counters, err := json.Marshal(job.Counters)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO scrape_jobs").
		WithArgs("job-1", "queued", submitted, params, counters).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.CreateJob(context.Background(), job))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJobStatus(t *testing.T) {
	t.Parallel()

	store, mock := newMockJobStore(t)
	counters := spirits.JobCounters{APICalls: 3, Stored: 2}
	raw, err := json.Marshal(counters)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE scrape_jobs SET").
		WithArgs("succeeded", "", raw, true, "job-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE scrape_jobs SET").
		WithArgs("running", "", raw, false, "job-404").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, store.UpdateJobStatus(context.Background(), "job-1", spirits.JobStatusSucceeded, "", counters))
	err = store.UpdateJobStatus(context.Background(), "job-404", spirits.JobStatusRunning, "", counters)
	require.ErrorIs(t, err, spirits.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJob(t *testing.T) {
	t.Parallel()

	store, mock := newMockJobStore(t)
	submitted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	started := submitted.Add(time.Second)
	finished := submitted.Add(time.Minute)

	mock.ExpectQuery("SELECT id, status, submitted_at").
		WithArgs("job-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "status", "submitted_at", "started_at", "finished_at", "error_text", "parameters", "counters",
		}).AddRow(
			"job-1", "failed", submitted, started, finished, "search quota exhausted",
			[]byte(`{"category":"rye","limit":5}`), []byte(`{"api_calls":3,"stored":1}`),
		))
	mock.ExpectQuery("SELECT id, status, submitted_at").
		WithArgs("job-404").
		WillReturnError(pgx.ErrNoRows)

	job, err := store.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, spirits.JobStatusFailed, job.Status)
	assert.Equal(t, "rye", job.Parameters.Category)
	assert.Equal(t, 3, job.Counters.APICalls)
	require.NotNil(t, job.Started)
	require.NotNil(t, job.Finished)
	assert.Equal(t, finished, job.Finished.UTC())
	assert.Equal(t, "search quota exhausted", job.ErrorText)

	_, err = store.GetJob(context.Background(), "job-404")
	require.ErrorIs(t, err, spirits.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAndListSpirits(t *testing.T) {
	t.Parallel()

	store, mock := newMockJobStore(t)
	mock.ExpectExec("INSERT INTO scrape_job_spirits").
		WithArgs("job-1", "s-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT spirit_id FROM scrape_job_spirits").
		WithArgs("job-1").
		WillReturnRows(pgxmock.NewRows([]string{"spirit_id"}).AddRow("s-1").AddRow("s-2"))

	require.NoError(t, store.RecordSpirit(context.Background(), "job-1", "s-1"))
	ids, err := store.ListSpirits(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1", "s-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS brands").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	require.NoError(t, Migrate(context.Background(), mock))
	require.NoError(t, mock.ExpectationsWereMet())
}
