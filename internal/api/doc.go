// Package api hosts the HTTP server for the scraper. Notable routes:
//   - GET /healthz and /readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/jobs and /v1/jobs/{job_id}/... to submit, inspect and cancel scrapes.
//   - POST /v1/dedupe/check, /v1/brand/extract and /v1/normalize expose the
//     name heuristics directly.
//   - GET /v1/spirits/... queries the stored catalog.
package api
