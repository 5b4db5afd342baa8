package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/app"
	"github.com/JakeFAU/spirits-scraper/internal/config"
	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
	"github.com/JakeFAU/spirits-scraper/internal/storage/local"
	storememory "github.com/JakeFAU/spirits-scraper/internal/storage/memory"
)

type staticSearch struct {
	items []spirits.SearchItem
}

func (s staticSearch) Search(_ context.Context, q spirits.SearchQuery) (spirits.SearchPage, error) {
	if q.Start > 1 {
		return spirits.SearchPage{}, nil
	}
	return spirits.SearchPage{Items: s.items}, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	metrics.Init()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Scraper.DelayMs = 0
	cfg.Scraper.Concurrency = 1
	cfg.Catalog.Enabled = false
	cfg.Search = config.SearchConfig{}
	cfg.DB.DSN = ""
	cfg.Storage = config.StorageConfig{Backend: "memory", Prefix: "raw"}
	cfg.PubSub = config.PubSubConfig{}
	return cfg
}

func TestNewWithDefaults(t *testing.T) {
	a, err := app.New(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &storememory.SpiritStore{}, a.Repository)
	assert.IsType(t, &storememory.JobStore{}, a.JobStore)
	assert.IsType(t, &storememory.BlobStore{}, a.Blobs)
	assert.Equal(t, 1, a.Dispatcher.Workers())

	_, err = a.Scraper()
	require.ErrorIs(t, err, app.ErrSearchNotConfigured)
	require.NoError(t, a.Ready(context.Background()))
	require.Error(t, a.Migrate(context.Background()))

	rec := httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewLocalStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = config.StorageConfig{Backend: "local", BaseDir: t.TempDir(), Prefix: "raw"}

	a, err := app.New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	assert.IsType(t, &local.BlobStore{}, a.Blobs)
}

func TestNewFailsOnBadDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.DSN = "://not-a-dsn"

	_, err := app.New(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "init database")
}

func TestJobRunsThroughWorkers(t *testing.T) {
	client := staticSearch{items: []spirits.SearchItem{
		{Title: "Eagle Rare 10 Year Bourbon", Link: "https://shop.example.com/p/eagle-rare"},
		{Title: "Blanton's Single Barrel Bourbon", Link: "https://shop.example.com/p/blantons"},
	}}
	a, err := app.New(context.Background(), testConfig(t), zap.NewNop(), app.WithSearchClient(client))
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Dispatcher.Run(ctx)

	body := bytes.NewBufferString(`{"category":"bourbon","limit":5,"queries":["bourbon whiskey"]}`)
	rec := httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/jobs", body))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var submitted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))

	require.Eventually(t, func() bool {
		job, err := a.JobStore.GetJob(ctx, submitted.JobID)
		return err == nil && job.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)

	job, err := a.JobStore.GetJob(ctx, submitted.JobID)
	require.NoError(t, err)
	require.Equal(t, spirits.JobStatusSucceeded, job.Status, job.ErrorText)
	assert.Equal(t, 2, job.Counters.Stored)

	ids, err := a.JobStore.ListSpirits(ctx, submitted.JobID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	stats, err := a.Repository.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSpirits)
}
