package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/config"
	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	"github.com/JakeFAU/spirits-scraper/internal/policy/simple"
	queuememory "github.com/JakeFAU/spirits-scraper/internal/queue/memory"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
	storememory "github.com/JakeFAU/spirits-scraper/internal/storage/memory"
	"github.com/JakeFAU/spirits-scraper/internal/worker"
)

type fakeIDGen struct {
	ids []string
}

func (f *fakeIDGen) NewID() (string, error) {
	if len(f.ids) == 0 {
		return "", errors.New("no ids left")
	}
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type harness struct {
	server *Server
	jobs   *storememory.JobStore
	queue  *queuememory.Queue
	repo   *storememory.SpiritStore
}

func newHarness(t *testing.T, mutate func(*config.Config, *Deps)) harness {
	t.Helper()
	metrics.Init()

	h := harness{
		jobs:  storememory.NewJobStore(),
		queue: queuememory.NewQueue(4),
		repo:  storememory.NewSpiritStore(),
	}
	cfg := config.Config{
		Scraper: config.ScraperConfig{DuplicateThreshold: 0.9, MaxQueries: 5},
	}
	deps := Deps{
		JobStore:   h.jobs,
		Queue:      h.queue,
		Cancels:    worker.NewCancels(),
		Repository: h.repo,
		IDGen:      &fakeIDGen{ids: []string{"job-1", "job-2"}},
		Clock:      fixedClock{now: time.Unix(100, 0).UTC()},
		Logger:     zap.NewNop(),
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}
	h.server = NewServer(deps, cfg)
	return h
}

func (h harness) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestProbes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	rec := h.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/readyz", "").Code)

	notReady := newHarness(t, func(_ *config.Config, d *Deps) {
		d.Ready = func(context.Context) error { return errors.New("db down") }
	})
	require.Equal(t, http.StatusServiceUnavailable, notReady.do(t, http.MethodGet, "/readyz", "").Code)

	metricsRec := h.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	require.Contains(t, metricsRec.Body.String(), "http_requests_total")
}

func TestSubmitJob(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	rec := h.do(t, http.MethodPost, "/v1/jobs", `{"category":" Bourbon ","limit":25}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Equal(t, "job-1", decode[map[string]string](t, rec)["job_id"])

	item, err := h.queue.Dequeue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "job-1", item.JobID)
	require.Equal(t, spirits.JobParameters{Category: "bourbon", Limit: 25, MaxQueries: 5}, item.Params)

	job, err := h.jobs.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, spirits.JobStatusQueued, job.Status)
}

func TestSubmitJobValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "invalid json", body: "{invalid", want: "invalid JSON"},
		{name: "unknown field", body: `{"category":"rum","urls":[]}`, want: "invalid JSON"},
		{name: "missing category", body: `{"limit":5}`, want: "category required"},
		{name: "limit too large", body: `{"category":"rum","limit":5000}`, want: "limit must be between"},
		{name: "negative max queries", body: `{"category":"rum","max_queries":-1}`, want: "max_queries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := newHarness(t, nil).do(t, http.MethodPost, "/v1/jobs", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestSubmitJobQueueFull(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(_ *config.Config, d *Deps) {
		d.Queue = queuememory.NewQueue(0)
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", bytes.NewBufferString(`{"category":"gin"}`))
	ctx, cancel := context.WithTimeout(req.Context(), 10*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Eventually(t, func() bool {
		job, err := h.jobs.GetJob(context.Background(), "job-1")
		return err == nil && job.Status == spirits.JobStatusFailed
	}, time.Second, 5*time.Millisecond)
}

func TestSubmitJobCategoryPolicy(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(_ *config.Config, d *Deps) {
		d.Policy = simple.New([]string{"bourbon", "rum"})
	})
	rec := h.do(t, http.MethodPost, "/v1/jobs", `{"category":"vodka"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "bourbon, rum")
	require.Equal(t, 0, h.queue.Len())

	require.Equal(t, http.StatusAccepted, h.do(t, http.MethodPost, "/v1/jobs", `{"category":"Rum"}`).Code)
}

func TestJobStatusResultAndCancel(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	require.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/v1/jobs/missing/status", "").Code)

	require.Equal(t, http.StatusAccepted, h.do(t, http.MethodPost, "/v1/jobs", `{"category":"bourbon"}`).Code)
	status := decode[map[string]spirits.Job](t, h.do(t, http.MethodGet, "/v1/jobs/job-1/status", ""))
	require.Equal(t, spirits.JobStatusQueued, status["job"].Status)

	rec := h.do(t, http.MethodPost, "/v1/jobs/job-1/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	job, err := h.jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	require.Equal(t, spirits.JobStatusCanceled, job.Status)

	require.Equal(t, http.StatusConflict, h.do(t, http.MethodPost, "/v1/jobs/job-1/cancel", "").Code)

	require.NoError(t, h.jobs.RecordSpirit(ctx, "job-1", "spirit-9"))
	counters := spirits.JobCounters{APICalls: 4, Stored: 2}
	require.NoError(t, h.jobs.UpdateJobStatus(ctx, "job-1", spirits.JobStatusSucceeded, "", counters))
	result := decode[spirits.JobResult](t, h.do(t, http.MethodGet, "/v1/jobs/job-1/result", ""))
	require.Equal(t, []string{"spirit-9"}, result.SpiritIDs)
	require.InDelta(t, 0.5, result.Efficiency, 0.0001)
}

func TestCancelRunningJob(t *testing.T) {
	t.Parallel()

	cancels := &recordingCanceler{running: true}
	h := newHarness(t, func(_ *config.Config, d *Deps) { d.Cancels = cancels })
	require.NoError(t, h.jobs.CreateJob(context.Background(), spirits.Job{ID: "run-1", Status: spirits.JobStatusRunning}))

	rec := h.do(t, http.MethodPost, "/v1/jobs/run-1/cancel", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []string{"run-1"}, cancels.ids)
}

type recordingCanceler struct {
	running bool
	ids     []string
}

func (c *recordingCanceler) Cancel(jobID string) bool {
	c.ids = append(c.ids, jobID)
	return c.running
}

func TestDedupeCheck(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	rec := h.do(t, http.MethodPost, "/v1/dedupe/check",
		`{"a":{"name":"Eagle Rare 10 Year"},"b":{"name":"Eagle Rare 17 Year"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dedupeResponse](t, rec)
	assert.False(t, got.IsDuplicate)
	assert.Equal(t, "eagle rare 10 year", got.KeyA)
	assert.InDelta(t, 0.9, got.Threshold, 0.0001)

	rec = h.do(t, http.MethodPost, "/v1/dedupe/check",
		`{"a":{"name":"Buffalo Trace Bourbon"},"b":{"name":"Buffalo Trace Bourbon 750ml"},"threshold":0.8}`)
	got = decode[dedupeResponse](t, rec)
	assert.True(t, got.IsDuplicate)

	rec = h.do(t, http.MethodPost, "/v1/dedupe/check", `{"a":{"name":"x"},"b":{"name":"y"},"threshold":2}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBrandAndNormalize(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	rec := h.do(t, http.MethodPost, "/v1/brand/extract", `{"names":["Buffalo Trace Kentucky Straight Bourbon"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	brands := decode[map[string][]brandResult](t, rec)["results"]
	require.Len(t, brands, 1)
	assert.Equal(t, "Buffalo Trace", brands[0].Brand)
	assert.True(t, brands[0].Known)

	rec = h.do(t, http.MethodPost, "/v1/normalize", `{"names":["Eagle Rare 10 Year Bourbon 750ml"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	norm := decode[map[string][]normalizeResult](t, rec)["results"]
	require.Len(t, norm, 1)
	assert.Equal(t, "Bourbon", norm[0].Type)
	assert.NotContains(t, norm[0].Key, "750ml")

	require.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/v1/normalize", `{"names":[]}`).Code)
}

func TestSpiritQueries(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.repo.Insert(ctx, spirits.Record{Name: "Eagle Rare 10 Year Bourbon", Brand: "Eagle Rare", Type: "Bourbon"})
	require.NoError(t, err)

	rec := h.do(t, http.MethodGet, "/v1/spirits/search?q=eagle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"count":1`)

	require.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/v1/spirits/search", "").Code)
	require.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/v1/spirits/search?q=x&limit=0", "").Code)

	stats := decode[spirits.Stats](t, h.do(t, http.MethodGet, "/v1/spirits/stats", ""))
	assert.Equal(t, 1, stats.TotalSpirits)
	assert.Equal(t, 1, stats.ByType["Bourbon"])

	rec = h.do(t, http.MethodGet, "/v1/spirits/enrichment?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Eagle Rare 10 Year Bourbon")
}

func TestAPIKeyRequired(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(c *config.Config, _ *Deps) {
		c.Auth = config.AuthConfig{Enabled: true, APIKey: "secret"}
	})
	require.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, "/v1/spirits/stats", "").Code)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/v1/spirits/stats?api_key=secret", "").Code)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/healthz", "").Code)
}

func TestRecoverMiddleware(t *testing.T) {
	t.Parallel()

	handler := recoverMiddleware(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
