package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcsstorage "cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/api"
	"github.com/JakeFAU/spirits-scraper/internal/cache/memory"
	rediscache "github.com/JakeFAU/spirits-scraper/internal/cache/redis"
	"github.com/JakeFAU/spirits-scraper/internal/catalog"
	"github.com/JakeFAU/spirits-scraper/internal/clock/system"
	"github.com/JakeFAU/spirits-scraper/internal/config"
	"github.com/JakeFAU/spirits-scraper/internal/dispatcher"
	collyfetcher "github.com/JakeFAU/spirits-scraper/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/spirits-scraper/internal/fetcher/headless"
	"github.com/JakeFAU/spirits-scraper/internal/hash/sha256"
	"github.com/JakeFAU/spirits-scraper/internal/headless/detector"
	"github.com/JakeFAU/spirits-scraper/internal/id/uuid"
	"github.com/JakeFAU/spirits-scraper/internal/ingest"
	"github.com/JakeFAU/spirits-scraper/internal/logging"
	"github.com/JakeFAU/spirits-scraper/internal/policy/ratelimit"
	"github.com/JakeFAU/spirits-scraper/internal/policy/simple"
	memorypublisher "github.com/JakeFAU/spirits-scraper/internal/publisher/memory"
	pubsubpublisher "github.com/JakeFAU/spirits-scraper/internal/publisher/pubsub"
	queuememory "github.com/JakeFAU/spirits-scraper/internal/queue/memory"
	"github.com/JakeFAU/spirits-scraper/internal/quota"
	"github.com/JakeFAU/spirits-scraper/internal/scraper"
	"github.com/JakeFAU/spirits-scraper/internal/search"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
	"github.com/JakeFAU/spirits-scraper/internal/storage/gcs"
	"github.com/JakeFAU/spirits-scraper/internal/storage/local"
	storememory "github.com/JakeFAU/spirits-scraper/internal/storage/memory"
	"github.com/JakeFAU/spirits-scraper/internal/storage/postgres"
	"github.com/JakeFAU/spirits-scraper/internal/worker"
)

// ErrSearchNotConfigured is returned by Scraper when no search credentials are set.
var ErrSearchNotConfigured = errors.New("search.api_key and search.engine_id are required to scrape")

// App holds the shared services for one process. Components that are not
// configured stay at their in-memory defaults.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Repository spirits.Repository
	JobStore   spirits.JobStore
	Blobs      spirits.BlobStore
	Publisher  spirits.Publisher
	Ingest     *ingest.Service
	Queue      *queuememory.Queue
	Cancels    *worker.Cancels
	Dispatcher *dispatcher.Dispatcher
	Server     *api.Server

	scraper *scraper.Scraper
	pool    *pgxpool.Pool
	closers []func() error
}

// Option customizes New.
type Option func(*options)

type options struct {
	search spirits.SearchClient
}

// WithSearchClient replaces the Custom Search client built from config.
func WithSearchClient(c spirits.SearchClient) Option {
	return func(o *options) { o.search = c }
}

// New builds every service described by cfg. It fails fast when a configured
// backend cannot be reached.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{
		Config:  cfg,
		Logger:  logging.OrNop(logger),
		Cancels: worker.NewCancels(),
	}
	a.Logger.Info("initializing application services")

	steps := []func(context.Context) error{
		a.initStores,
		a.initBlobs,
		a.initPublisher,
		func(ctx context.Context) error { return a.initScraper(ctx, o.search) },
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	a.initWorkers()
	a.Logger.Info("application services initialized",
		zap.Bool("postgres", a.pool != nil),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("search", a.scraper != nil),
	)
	return a, nil
}

func (a *App) initStores(ctx context.Context) error {
	if a.Config.DB.DSN == "" {
		a.Logger.Info("no db.dsn set; using in-memory stores")
		a.Repository = storememory.NewSpiritStore()
		a.JobStore = storememory.NewJobStore()
		return nil
	}
	p, err := postgres.Connect(ctx, postgres.PoolConfig{
		DSN:      a.Config.DB.DSN,
		MaxConns: a.Config.DB.MaxConns,
	})
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	a.pool = p
	a.closers = append(a.closers, func() error { p.Close(); return nil })

	db := a.Config.DB
	repo, err := postgres.NewSpiritStore(p, postgres.Tables{
		Spirits:          db.SpiritsTable,
		Brands:           db.BrandsTable,
		Categories:       db.CategoriesTable,
		SpiritCategories: db.SpiritCategoriesTable,
	})
	if err != nil {
		return fmt.Errorf("init spirit store: %w", err)
	}
	jobs, err := postgres.NewJobStore(p, db.JobsTable, db.JobSpiritsTable)
	if err != nil {
		return fmt.Errorf("init job store: %w", err)
	}
	a.Repository = repo
	a.JobStore = jobs
	return nil
}

func (a *App) initBlobs(ctx context.Context) error {
	switch a.Config.Storage.Backend {
	case "gcs":
		client, err := gcsstorage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("init gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: a.Config.Storage.GCSBucket})
		if err != nil {
			_ = client.Close()
			return fmt.Errorf("init gcs blob store: %w", err)
		}
		a.Blobs = store
		a.closers = append(a.closers, store.Close)
	case "local":
		store, err := local.New(local.Config{BaseDir: a.Config.Storage.BaseDir})
		if err != nil {
			return fmt.Errorf("init local blob store: %w", err)
		}
		a.Blobs = store
	default:
		a.Blobs = storememory.NewBlobStore()
	}
	return nil
}

func (a *App) initPublisher(ctx context.Context) error {
	if a.Config.PubSub.TopicName == "" {
		a.Publisher = memorypublisher.New()
		return nil
	}
	p, err := pubsubpublisher.New(ctx, a.Config.PubSub.ProjectID, a.Config.PubSub.TopicName)
	if err != nil {
		return fmt.Errorf("init pubsub publisher: %w", err)
	}
	a.Publisher = p
	a.closers = append(a.closers, p.Close)
	return nil
}

func (a *App) initScraper(ctx context.Context, client spirits.SearchClient) error {
	cfg := a.Config
	clock := system.New()
	hasher := sha256.New()

	a.Ingest = ingest.New(a.Repository, a.Publisher, clock, ingest.Config{
		Threshold: cfg.Scraper.DuplicateThreshold,
		BatchSize: cfg.Scraper.BatchSize,
	}, a.Logger.Named("ingest"))

	if client == nil {
		if !cfg.Search.Configured() {
			a.Logger.Warn("search credentials missing; scrape jobs will fail")
			return nil
		}
		var cache spirits.Cache = memory.New(clock)
		if cfg.Cache.Backend == "redis" {
			rc, err := rediscache.New(ctx, rediscache.Options{
				Addr:     cfg.Cache.RedisAddr,
				Password: cfg.Cache.RedisPassword,
				DB:       cfg.Cache.RedisDB,
			})
			if err != nil {
				return fmt.Errorf("init redis cache: %w", err)
			}
			cache = rc
			a.closers = append(a.closers, rc.Close)
		}
		sc, err := search.New(ctx,
			search.Config{
				APIKey:   cfg.Search.APIKey,
				EngineID: cfg.Search.EngineID,
				Endpoint: cfg.Search.Endpoint,
				Timeout:  cfg.SearchTimeout(),
			},
			ratelimit.New(ratelimit.PerMinute(cfg.Search.RatePerMinute)),
			quota.NewTracker(cfg.Search.DailyLimit, clock),
			hasher,
			search.WithCache(cache, cfg.CacheTTL()),
			search.WithArchive(a.Blobs, cfg.Storage.Prefix),
			search.WithLogger(a.Logger.Named("search")),
		)
		if err != nil {
			return fmt.Errorf("init search client: %w", err)
		}
		client = sc
	}

	scraperOpts := []scraper.Option{
		scraper.WithLogger(a.Logger.Named("scraper")),
		scraper.WithArchive(a.Blobs, hasher, cfg.Storage.Prefix),
	}
	if cfg.Catalog.Enabled {
		probe := collyfetcher.New(collyfetcher.Config{
			UserAgent:     cfg.Catalog.UserAgent,
			RespectRobots: true,
			Timeout:       time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second,
		})
		scraperOpts = append(scraperOpts, scraper.WithCatalog(probe, catalog.NewParser(a.Logger.Named("catalog"))))
		if cfg.Catalog.Headless {
			hf, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
				MaxParallel:       cfg.Catalog.MaxParallel,
				UserAgent:         cfg.Catalog.UserAgent,
				NavigationTimeout: time.Duration(cfg.Catalog.NavTimeoutSeconds) * time.Second,
			})
			if err != nil {
				a.Logger.Warn("headless fetcher init failed", zap.Error(err))
			} else {
				scraperOpts = append(scraperOpts,
					scraper.WithHeadless(hf, detector.NewHeuristic(cfg.Catalog.PromotionThreshold)))
				a.closers = append(a.closers, func() error { hf.Close(); return nil })
			}
		}
	}
	a.scraper = scraper.New(client, a.Ingest, scraper.Config{
		MaxQueries:         cfg.Scraper.MaxQueries,
		MaxResultsPerQuery: cfg.Scraper.MaxResultsPerQuery,
		QueryDelay:         cfg.QueryDelay(),
	}, scraperOpts...)
	return nil
}

func (a *App) initWorkers() {
	cfg := a.Config
	a.Queue = queuememory.NewQueue(cfg.Scraper.QueueDepth)

	var runner worker.Runner
	if a.scraper != nil {
		runner = a.scraper
	}
	workers := make([]*worker.Worker, 0, cfg.Scraper.Concurrency)
	for i := range cfg.Scraper.Concurrency {
		workers = append(workers, worker.New(
			a.Queue,
			a.JobStore,
			runner,
			a.Cancels,
			a.Logger.Named("worker").With(zap.Int("index", i)),
		))
	}
	a.Dispatcher = dispatcher.New(a.Queue, workers)
	a.Server = api.NewServer(api.Deps{
		JobStore:   a.JobStore,
		Queue:      a.Dispatcher,
		Cancels:    a.Cancels,
		Repository: a.Repository,
		IDGen:      uuid.New(),
		Clock:      system.New(),
		Logger:     a.Logger.Named("api"),
		Policy:     simple.New(cfg.Scraper.Categories),
		Ready:      a.Ready,
	}, cfg)
}

// Scraper returns the discovery pipeline, or ErrSearchNotConfigured.
func (a *App) Scraper() (*scraper.Scraper, error) {
	if a.scraper == nil {
		return nil, ErrSearchNotConfigured
	}
	return a.scraper, nil
}

// Ready pings the database when one is configured.
func (a *App) Ready(ctx context.Context) error {
	if a.pool == nil {
		return nil
	}
	if err := a.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Migrate applies the schema to the configured database.
func (a *App) Migrate(ctx context.Context) error {
	if a.pool == nil {
		return errors.New("db.dsn is required to migrate")
	}
	return postgres.Migrate(ctx, a.pool)
}

// Close releases every backend in reverse order of construction.
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("error closing service", zap.Error(err))
		}
	}
	a.closers = nil
}
