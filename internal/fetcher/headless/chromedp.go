// Package headless renders script-driven catalog pages with headless Chrome.
package headless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"

	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

const defaultNavTimeout = 45 * time.Second

// Config controls the headless fetcher.
type Config struct {
	// MaxParallel caps concurrent browser tabs; zero means unlimited.
	MaxParallel       int
	UserAgent         string
	NavigationTimeout time.Duration
	// SettleDelay gives client-side product grids time to render after the body is ready.
	SettleDelay time.Duration
}

// Fetcher implements spirits.Fetcher using chromedp.
type Fetcher struct {
	cfg         Config
	slots       *semaphore.Weighted
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewChromedp creates a headless fetcher. Chrome is started lazily on first Fetch.
func NewChromedp(cfg Config) (*Fetcher, error) {
	if cfg.MaxParallel < 0 {
		return nil, errors.New("max parallel must be >= 0")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = defaultNavTimeout
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 750 * time.Millisecond
	}
	var slots *semaphore.Weighted
	if cfg.MaxParallel > 0 {
		slots = semaphore.NewWeighted(int64(cfg.MaxParallel))
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Fetcher{
		cfg:         cfg,
		slots:       slots,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close shuts the browser down.
func (f *Fetcher) Close() {
	f.allocCancel()
}

// Fetch navigates to the page and returns the rendered DOM.
func (f *Fetcher) Fetch(ctx context.Context, request spirits.FetchRequest) (spirits.FetchResponse, error) {
	if f.slots != nil {
		if err := f.slots.Acquire(ctx, 1); err != nil {
			return spirits.FetchResponse{}, fmt.Errorf("headless slot wait canceled: %w", err)
		}
		defer f.slots.Release(1)
	}

	tabCtx, tabCancel := chromedp.NewContext(f.allocator)
	defer tabCancel()
	tabCtx, cancel := context.WithTimeout(tabCtx, f.cfg.NavigationTimeout)
	defer cancel()
	// Tie the tab to the caller's cancellation as well as the navigation timeout.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	doc := &documentResponse{}
	chromedp.ListenTarget(tabCtx, doc.listen)

	start := time.Now()
	var html, finalURL string
	err := chromedp.Run(tabCtx,
		f.setupAction(request.Headers),
		chromedp.Navigate(request.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.cfg.SettleDelay),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		metrics.ObserveCatalogPage(request.URL, "error", 0)
		return spirits.FetchResponse{}, fmt.Errorf("chromedp run: %w", err)
	}

	status, headers, url := doc.result(request.URL, finalURL)
	metrics.ObserveCatalogPage(request.URL, "headless", len(html))
	return spirits.FetchResponse{
		URL:          url,
		StatusCode:   status,
		Headers:      headers,
		Body:         []byte(html),
		Duration:     time.Since(start),
		UsedHeadless: true,
	}, nil
}

func (f *Fetcher) setupAction(headers http.Header) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if len(headers) > 0 {
			if err := network.SetExtraHTTPHeaders(toNetworkHeaders(headers)).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
		}
		return nil
	})
}

// documentResponse captures the status and headers of the main document.
type documentResponse struct {
	mu      sync.Mutex
	status  int
	headers http.Header
	url     string
}

func (d *documentResponse) listen(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	headers := http.Header{}
	for key, value := range resp.Response.Headers {
		switch v := value.(type) {
		case string:
			headers.Add(key, v)
		case []any:
			for _, entry := range v {
				headers.Add(key, fmt.Sprint(entry))
			}
		default:
			headers.Add(key, fmt.Sprint(v))
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	// Redirect chains report several documents; keep the first.
	if d.status != 0 {
		return
	}
	d.status = int(resp.Response.Status)
	d.headers = headers
	d.url = resp.Response.URL
}

func (d *documentResponse) result(requestURL, finalURL string) (int, http.Header, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	status, url := d.status, d.url
	if status == 0 {
		status = http.StatusOK
	}
	if finalURL != "" {
		url = finalURL
	}
	if url == "" {
		url = requestURL
	}
	headers := d.headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	return status, headers, url
}

func toNetworkHeaders(h http.Header) network.Headers {
	headers := network.Headers{}
	for key, values := range h {
		switch len(values) {
		case 0:
		case 1:
			headers[key] = values[0]
		default:
			headers[key] = append([]string(nil), values...)
		}
	}
	return headers
}
