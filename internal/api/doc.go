// Package api hosts the read-only HTTP view of the stored dataset. Notable
// routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/seasons, /v1/seasons/{number} and its contestants and episodes.
//   - GET /v1/contestants filtered by finalist, winner and jury flags.
package api
