// Package collyfetcher fetches retailer catalog pages with gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxBodySize = 4 << 20
)

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
	MaxBodySize   int
}

// Fetcher implements spirits.Fetcher using the Colly collector.
type Fetcher struct {
	cfg  Config
	base *colly.Collector
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher. Catalog pages are revisited across jobs, so the
// collector does not remember visited URLs.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(cfg.MaxBodySize),
	)
	c.ParseHTTPErrorResponse = true
	c.WithTransport(newHTTPTransport())
	return &Fetcher{cfg: cfg, base: c}
}

// Fetch executes a single GET. Non-2xx responses are returned, not treated as errors.
func (f *Fetcher) Fetch(ctx context.Context, request spirits.FetchRequest) (spirits.FetchResponse, error) {
	var (
		result   spirits.FetchResponse
		fetchErr error
	)
	collector := f.buildCollector(request, time.Now(), &result, &fetchErr)
	if err := runCollector(ctx, collector, request.URL, &fetchErr); err != nil {
		metrics.ObserveCatalogPage(request.URL, "error", 0)
		return spirits.FetchResponse{}, err
	}
	metrics.ObserveCatalogPage(request.URL, strconv.Itoa(result.StatusCode), len(result.Body))
	return result, nil
}

func (f *Fetcher) buildCollector(
	request spirits.FetchRequest,
	start time.Time,
	result *spirits.FetchResponse,
	fetchErr *error,
) *colly.Collector {
	collector := f.base.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	collector.SetRequestTimeout(f.cfg.Timeout)
	configureHooks(collector, request, start, result, fetchErr)
	return collector
}

func configureHooks(
	hooks collectorHooks,
	request spirits.FetchRequest,
	start time.Time,
	result *spirits.FetchResponse,
	fetchErr *error,
) {
	hooks.OnRequest(func(r *colly.Request) {
		for key, values := range request.Headers {
			for _, v := range values {
				r.Headers.Add(key, v)
			}
		}
	})

	hooks.OnResponse(func(r *colly.Response) {
		*result = spirits.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
		if r.Headers != nil {
			result.Headers = r.Headers.Clone()
		}
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("catalog fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("catalog visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("catalog response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
}
