// Package app initializes and holds long-lived application services, acting as a dependency injection container.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes probes, metrics, job management and the name heuristics. Job requests are
//     validated against the category policy, persisted via the JobStore, then enqueued.
//   - Dispatcher & queue: jobs flow through a bounded in-memory queue sized by scraper.queue_depth and are fanned out
//     to a fixed worker pool sized by scraper.concurrency. Each worker owns a cancel func per running job.
//   - Discovery pipeline: the scraper pages Custom Search results (rate limited, quota tracked, cached in memory or
//     Redis), fetches catalog pages with colly and promotes them to chromedp when the detector flags a script shell,
//     then extracts and deduplicates records in-run.
//   - Persistence & fanout: ingest validates each record, checks exact and fuzzy duplicates against the repository
//     (Postgres or memory), inserts, links brand and category, and publishes spirit.stored to Pub/Sub when a topic is
//     configured. Raw search responses and catalog pages are archived to the BlobStore (memory/local/GCS).
//
// Operational notes:
//   - Rate-limit, forbidden and quota errors fail the running job; other per-query failures are counted and skipped.
//   - Close releases backends in reverse order; Ready pings Postgres for /readyz.
package app
