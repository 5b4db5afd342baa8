// Package search wraps the Google Custom Search JSON API with the per-minute
// rate limit, response cache, daily quota and result filtering the scraper
// relies on.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/JakeFAU/spirits-scraper/internal/cache"
	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	"github.com/JakeFAU/spirits-scraper/internal/policy/ratelimit"
	"github.com/JakeFAU/spirits-scraper/internal/quota"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// PageSize is the largest page the API returns.
const PageSize = 10

const limiterKey = "customsearch"

var (
	// ErrRateLimited is returned when the API answers 429.
	ErrRateLimited = errors.New("search API rate limit exceeded")
	// ErrForbidden is returned when the API answers 403 (bad key or disabled API).
	ErrForbidden = errors.New("search API access forbidden")
)

// Config carries the connection settings for the API.
type Config struct {
	APIKey   string
	EngineID string
	// Endpoint overrides the API base URL (tests, proxies).
	Endpoint string
	Timeout  time.Duration
}

// Client implements spirits.SearchClient.
type Client struct {
	svc      *customsearch.Service
	engineID string
	timeout  time.Duration
	limiter  *ratelimit.Limiter
	quota    *quota.Tracker
	hasher   spirits.Hasher
	cache    spirits.Cache
	cacheTTL time.Duration
	archive  spirits.BlobStore
	prefix   string
	logger   *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithCache enables response caching for ttl.
func WithCache(c spirits.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithArchive stores every raw API response under <prefix>/search/.
func WithArchive(store spirits.BlobStore, prefix string) Option {
	return func(cl *Client) {
		cl.archive = store
		cl.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// New builds a Client. limiter and tracker may be nil to disable those checks.
func New(ctx context.Context, cfg Config, limiter *ratelimit.Limiter, tracker *quota.Tracker, hasher spirits.Hasher, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, errors.New("search API key and engine id are required")
	}
	if hasher == nil {
		return nil, errors.New("hasher is required")
	}
	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create customsearch service: %w", err)
	}
	c := &Client{
		svc:      svc,
		engineID: cfg.EngineID,
		timeout:  cfg.Timeout,
		limiter:  limiter,
		quota:    tracker,
		hasher:   hasher,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search runs one query. Cached pages are returned without touching the
// limiter or the quota.
func (c *Client) Search(ctx context.Context, q spirits.SearchQuery) (spirits.SearchPage, error) {
	if q.Num <= 0 || q.Num > PageSize {
		q.Num = PageSize
	}
	if q.Start <= 0 {
		q.Start = 1
	}
	key, err := cache.Key(c.hasher, q)
	if err != nil {
		return spirits.SearchPage{}, err
	}
	if page, ok := c.cached(ctx, key); ok {
		c.logger.Debug("search cache hit", zap.String("query", q.Query))
		metrics.ObserveSearch("cached", len(page.Items), 0)
		return page, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey); err != nil {
			return spirits.SearchPage{}, fmt.Errorf("wait for search rate limit: %w", err)
		}
	}
	if c.quota != nil {
		if err := c.quota.Consume(); err != nil {
			metrics.ObserveSearch("quota", 0, 0)
			return spirits.SearchPage{}, err
		}
	}

	start := time.Now()
	resp, err := c.call(ctx, q)
	elapsed := time.Since(start)
	if err != nil {
		err = classify(err)
		metrics.ObserveSearch(outcome(err), 0, elapsed)
		return spirits.SearchPage{}, fmt.Errorf("search %q: %w", q.Query, err)
	}

	page := toPage(resp)
	before := len(page.Items)
	page.Items = FilterResults(page.Items)
	metrics.ObserveSearch("ok", len(page.Items), elapsed)
	c.logger.Info("search completed",
		zap.String("query", q.Query),
		zap.Int("start", q.Start),
		zap.Int("results", len(page.Items)),
		zap.Int("filtered", before-len(page.Items)),
		zap.Duration("duration", elapsed),
	)

	c.store(ctx, key, page)
	c.archiveResponse(ctx, key, resp)
	return page, nil
}

// SearchAll pages through results until maxResults items are collected, a
// page comes back empty, or the API reports no further pages.
func (c *Client) SearchAll(ctx context.Context, query string, maxResults int) ([]spirits.SearchItem, error) {
	return Paginate(ctx, c, query, maxResults)
}

// Paginate drives any SearchClient through consecutive pages. Clients may
// filter a page below PageSize, so only an empty page or !HasNext ends it.
func Paginate(ctx context.Context, client spirits.SearchClient, query string, maxResults int) ([]spirits.SearchItem, error) {
	if maxResults <= 0 {
		maxResults = PageSize
	}
	var items []spirits.SearchItem
	for start := 1; len(items) < maxResults; start += PageSize {
		page, err := client.Search(ctx, spirits.SearchQuery{Query: query, Start: start, Num: PageSize})
		if err != nil {
			return items, err
		}
		items = append(items, page.Items...)
		if len(page.Items) == 0 || !page.HasNext {
			break
		}
	}
	if len(items) > maxResults {
		items = items[:maxResults]
	}
	return items, nil
}

func (c *Client) call(ctx context.Context, q spirits.SearchQuery) (*customsearch.Search, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	call := c.svc.Cse.List().
		Cx(c.engineID).
		Q(q.Query).
		Start(int64(q.Start)).
		Num(int64(q.Num))
	if q.DateRestrict != "" {
		call = call.DateRestrict(q.DateRestrict)
	}
	if q.ExactTerms != "" {
		call = call.ExactTerms(q.ExactTerms)
	}
	if q.ExcludeTerms != "" {
		call = call.ExcludeTerms(q.ExcludeTerms)
	}
	if q.SiteSearch != "" {
		call = call.SiteSearch(q.SiteSearch).SiteSearchFilter("i")
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) cached(ctx context.Context, key string) (spirits.SearchPage, bool) {
	if c.cache == nil {
		return spirits.SearchPage{}, false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("search cache read failed", zap.Error(err))
		}
		return spirits.SearchPage{}, false
	}
	var page spirits.SearchPage
	if err := json.Unmarshal(raw, &page); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return spirits.SearchPage{}, false
	}
	page.Cached = true
	return page, true
}

func (c *Client) store(ctx context.Context, key string, page spirits.SearchPage) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		c.logger.Warn("encode search page", zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
		c.logger.Warn("search cache write failed", zap.Error(err))
	}
}

func (c *Client) archiveResponse(ctx context.Context, key string, resp *customsearch.Search) {
	if c.archive == nil {
		return
	}
	raw, err := resp.MarshalJSON()
	if err != nil {
		c.logger.Warn("encode search response", zap.Error(err))
		return
	}
	path := fmt.Sprintf("search/%s.json", key)
	if c.prefix != "" {
		path = c.prefix + "/" + path
	}
	if _, err := c.archive.PutObject(ctx, path, "application/json", raw); err != nil {
		c.logger.Warn("archive search response", zap.String("path", path), zap.Error(err))
	}
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Message)
	default:
		return err
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

func toPage(resp *customsearch.Search) spirits.SearchPage {
	page := spirits.SearchPage{Items: make([]spirits.SearchItem, 0, len(resp.Items))}
	if resp.SearchInformation != nil {
		page.TotalResults, _ = strconv.ParseInt(resp.SearchInformation.TotalResults, 10, 64)
	}
	if resp.Queries != nil {
		page.HasNext = len(resp.Queries.NextPage) > 0
	}
	for _, r := range resp.Items {
		if r == nil {
			continue
		}
		page.Items = append(page.Items, spirits.SearchItem{
			Title:       r.Title,
			Link:        r.Link,
			DisplayLink: r.DisplayLink,
			Snippet:     r.Snippet,
			Pagemap:     decodePagemap(r.Pagemap),
		})
	}
	return page
}

// decodePagemap flattens the free-form pagemap into string maps. Non-string
// values are formatted with their JSON text.
func decodePagemap(raw googleapi.RawMessage) spirits.Pagemap {
	if len(raw) == 0 {
		return spirits.Pagemap{}
	}
	var blocks map[string][]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return spirits.Pagemap{}
	}
	flatten := func(name string) []map[string]string {
		var out []map[string]string
		for _, block := range blocks[name] {
			m := make(map[string]string, len(block))
			for k, v := range block {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					s = string(v)
				}
				m[k] = s
			}
			out = append(out, m)
		}
		return out
	}
	return spirits.Pagemap{
		Products: flatten("product"),
		Offers:   flatten("offer"),
		Metatags: flatten("metatags"),
		Images:   flatten("cse_image"),
	}
}
