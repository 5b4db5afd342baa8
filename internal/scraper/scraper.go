// Package scraper runs the discovery pipeline: search, extract, fetch catalog
// pages and store what is new.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/spirits-scraper/internal/catalog"
	"github.com/JakeFAU/spirits-scraper/internal/dedup"
	"github.com/JakeFAU/spirits-scraper/internal/extract"
	"github.com/JakeFAU/spirits-scraper/internal/ingest"
	"github.com/JakeFAU/spirits-scraper/internal/logging"
	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	"github.com/JakeFAU/spirits-scraper/internal/quota"
	"github.com/JakeFAU/spirits-scraper/internal/search"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// DefaultLimit is the number of spirits a job stores when no limit is given.
const DefaultLimit = 50

const defaultCatalogParallel = 4

// Config tunes a run.
type Config struct {
	MaxQueries         int
	MaxResultsPerQuery int
	QueryDelay         time.Duration
	CatalogParallel    int
}

// Store is the part of ingest.Service the scraper needs.
type Store interface {
	StoreBatch(ctx context.Context, recs []spirits.Record) ([]ingest.StoreResult, error)
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithCatalog enables fetching result pages that look like product listings.
func WithCatalog(fetcher spirits.Fetcher, parser *catalog.Parser) Option {
	return func(s *Scraper) {
		s.fetcher = fetcher
		s.parser = parser
	}
}

// WithHeadless re-fetches catalog pages with a browser when detector says the
// static HTML is a script shell.
func WithHeadless(fetcher spirits.Fetcher, detector spirits.HeadlessDetector) Option {
	return func(s *Scraper) {
		s.headless = fetcher
		s.detector = detector
	}
}

// WithArchive stores fetched catalog HTML under <prefix>/catalog/<hash>.html.
func WithArchive(store spirits.BlobStore, hasher spirits.Hasher, prefix string) Option {
	return func(s *Scraper) {
		s.archive = store
		s.hasher = hasher
		s.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scraper) {
		s.logger = logging.OrNop(logger)
	}
}

// Scraper discovers spirits for a category.
type Scraper struct {
	search    spirits.SearchClient
	extractor *extract.Extractor
	store     Store
	cfg       Config

	fetcher  spirits.Fetcher
	parser   *catalog.Parser
	headless spirits.Fetcher
	detector spirits.HeadlessDetector

	archive spirits.BlobStore
	hasher  spirits.Hasher
	prefix  string

	logger *zap.Logger
}

// New builds a Scraper.
func New(client spirits.SearchClient, store Store, cfg Config, opts ...Option) *Scraper {
	if cfg.MaxQueries <= 0 {
		cfg.MaxQueries = extract.MaxQueries
	}
	if cfg.MaxResultsPerQuery <= 0 {
		cfg.MaxResultsPerQuery = search.PageSize
	}
	if cfg.CatalogParallel <= 0 {
		cfg.CatalogParallel = defaultCatalogParallel
	}
	s := &Scraper{
		search:    client,
		extractor: extract.New(nil),
		store:     store,
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher != nil && s.parser == nil {
		s.parser = catalog.NewParser(s.logger)
	}
	return s
}

// run holds the state of one Run call.
type run struct {
	params   spirits.JobParameters
	counters *spirits.JobCounters
	onStored func(spirits.Record)
	links    map[string]struct{}
	keys     map[string]struct{}
	logger   *zap.Logger
}

// Run executes the pipeline until params.Limit spirits are stored or the
// queries run out. Rate limiting, quota exhaustion and cancellation abort the
// run; other per-query failures are counted and skipped.
func (s *Scraper) Run(
	ctx context.Context,
	params spirits.JobParameters,
	counters *spirits.JobCounters,
	onStored func(spirits.Record),
) error {
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}
	if counters.TopQueries == nil {
		counters.TopQueries = make(map[string]int)
	}
	if onStored == nil {
		onStored = func(spirits.Record) {}
	}
	queries := params.Queries
	if len(queries) == 0 {
		maxQueries := s.cfg.MaxQueries
		if params.MaxQueries > 0 {
			maxQueries = params.MaxQueries
		}
		queries = extract.Queries(params.Category, maxQueries)
	}

	r := &run{
		params:   params,
		counters: counters,
		onStored: onStored,
		links:    make(map[string]struct{}),
		keys:     make(map[string]struct{}),
		logger:   s.logger.With(zap.String("category", params.Category)),
	}
	client := &countingClient{inner: s.search, counters: counters}

	for i, q := range queries {
		if counters.Stored >= params.Limit {
			break
		}
		if i > 0 && s.cfg.QueryDelay > 0 {
			if err := sleep(ctx, s.cfg.QueryDelay); err != nil {
				return err
			}
		}
		if err := s.runQuery(ctx, r, client, q); err != nil {
			return err
		}
	}
	r.logger.Info("scrape complete",
		zap.Int("queries", len(queries)),
		zap.Int("api_calls", counters.APICalls),
		zap.Int("stored", counters.Stored),
		zap.Float64("efficiency", counters.Efficiency()),
	)
	return nil
}

func (s *Scraper) runQuery(ctx context.Context, r *run, client spirits.SearchClient, q string) error {
	items, err := search.Paginate(ctx, client, q, s.cfg.MaxResultsPerQuery)
	if err != nil {
		if fatal(ctx, err) {
			return fmt.Errorf("search %q: %w", q, err)
		}
		r.counters.Failures++
		r.logger.Warn("search failed", zap.String("query", q), zap.Error(err))
	}
	r.counters.Results += len(items)

	var catalogLinks []string
	var recs []spirits.Record
	for _, item := range items {
		if _, seen := r.links[item.Link]; seen {
			continue
		}
		r.links[item.Link] = struct{}{}
		if s.fetcher != nil && extract.IsCatalogPage(item.Link, item.Title+" "+item.Snippet) {
			catalogLinks = append(catalogLinks, item.Link)
		}
		recs = append(recs, s.extractor.Extract(item, r.params.Category)...)
	}
	metrics.ObserveExtracted("search", len(recs))

	catalogRecs, err := s.fetchCatalogs(ctx, r, catalogLinks)
	if err != nil {
		return err
	}
	metrics.ObserveExtracted("catalog", len(catalogRecs))
	recs = append(catalogRecs, recs...)
	r.counters.Extracted += len(recs)

	fresh := s.dedupeRun(r, recs)
	if remaining := r.params.Limit - r.counters.Stored; len(fresh) > remaining {
		fresh = fresh[:remaining]
	}
	if len(fresh) == 0 {
		return nil
	}

	results, err := s.store.StoreBatch(ctx, fresh)
	for _, res := range results {
		switch {
		case res.Error != "":
			r.counters.Failures++
			r.logger.Debug("record not stored", zap.String("name", res.Record.Name), zap.String("error", res.Error))
		case res.Duplicate:
			r.counters.Duplicates++
		case res.Stored:
			r.counters.Stored++
			r.counters.TopQueries[q]++
			r.onStored(res.Record)
		}
	}
	if err != nil {
		return fmt.Errorf("store results for %q: %w", q, err)
	}
	return nil
}

// dedupeRun drops records whose normalized key was already seen in this run.
func (s *Scraper) dedupeRun(r *run, recs []spirits.Record) []spirits.Record {
	out := make([]spirits.Record, 0, len(recs))
	for _, rec := range recs {
		key := dedup.NormalizeKey(rec.Name)
		if key == "" {
			continue
		}
		if _, seen := r.keys[key]; seen {
			r.counters.Duplicates++
			metrics.ObserveDuplicate("in_run")
			continue
		}
		r.keys[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func (s *Scraper) fetchCatalogs(ctx context.Context, r *run, links []string) ([]spirits.Record, error) {
	if len(links) == 0 {
		return nil, nil
	}
	pages := make([][]spirits.Record, len(links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.CatalogParallel)
	for i, link := range links {
		g.Go(func() error {
			recs, err := s.fetchCatalog(gctx, link, r.params.Category)
			if err != nil {
				r.logger.Warn("catalog page failed", zap.String("url", link), zap.Error(err))
			}
			pages[i] = recs
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []spirits.Record
	for _, recs := range pages {
		if len(recs) > 0 {
			r.counters.CatalogHits++
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (s *Scraper) fetchCatalog(ctx context.Context, link, category string) ([]spirits.Record, error) {
	resp, err := s.fetcher.Fetch(ctx, spirits.FetchRequest{URL: link})
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: status %d", resp.StatusCode)
	}
	recs, err := s.parseAndArchive(ctx, resp, category)
	if err != nil || len(recs) > 0 || s.headless == nil || s.detector == nil {
		return recs, err
	}
	if !s.detector.ShouldPromote(resp) {
		return nil, nil
	}

	rendered, err := s.headless.Fetch(ctx, spirits.FetchRequest{URL: link, UseHeadless: true})
	if err != nil {
		return nil, fmt.Errorf("headless fetch: %w", err)
	}
	return s.parseAndArchive(ctx, rendered, category)
}

func (s *Scraper) parseAndArchive(ctx context.Context, resp spirits.FetchResponse, category string) ([]spirits.Record, error) {
	if s.archive != nil && s.hasher != nil && len(resp.Body) > 0 {
		if sum, err := s.hasher.Hash(resp.Body); err == nil {
			name := path.Join(s.prefix, "catalog", sum+".html")
			if _, err := s.archive.PutObject(ctx, name, "text/html", resp.Body); err != nil {
				s.logger.Warn("archive catalog page failed", zap.String("url", resp.URL), zap.Error(err))
			}
		}
	}
	recs, err := s.parser.Parse(resp.URL, resp.Body, category)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return recs, nil
}

// fatal reports whether a search error must stop the whole run.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, search.ErrRateLimited) ||
		errors.Is(err, search.ErrForbidden) ||
		errors.Is(err, quota.ErrExhausted)
}

// countingClient counts API calls that were not served from cache.
type countingClient struct {
	inner    spirits.SearchClient
	counters *spirits.JobCounters
}

func (c *countingClient) Search(ctx context.Context, q spirits.SearchQuery) (spirits.SearchPage, error) {
	page, err := c.inner.Search(ctx, q)
	if err == nil && !page.Cached {
		c.counters.APICalls++
	}
	return page, err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
