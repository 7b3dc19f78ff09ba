// Package metrics provides the Prometheus registry and exposition handler for the
// comic catalog. All metrics are defined in their respective packages (client,
// ratelimit, pagination, catalog, handoff) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the comic catalog.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer paired with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler that exposes every registered metric.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - comic_requests_total{endpoint, status} (Counter): Upstream requests by endpoint and HTTP status
//   - comic_request_duration_seconds{endpoint} (Histogram): Upstream request duration by endpoint
//   - comic_errors_total{class} (Counter): Errors by class (not_found, client, server, rate_limit, network, decode)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - comic_rate_limit_cooldown_seconds (Gauge): Remaining cooldown learned from 429 responses
//   - comic_rate_limit_blocks_total (Counter): Requests refused during a cooldown
//   - comic_rate_limit_wait_seconds (Histogram): Time spent waiting on client-side pacing
//
// Batch Metrics (pkg/pagination):
//   - comic_batch_duration_seconds (Histogram): Duration of one UI page fan-out
//   - comic_batch_pages_total{outcome} (Counter): Upstream pages fetched by outcome (data, empty, error)
//
// Catalog Metrics (pkg/catalog):
//   - comic_catalog_loads_total{origin, outcome} (Counter): Fetcher loads (ok, empty, not_found, error)
//   - comic_filtered_records_total{origin, reason} (Counter): Promotional records dropped
//   - comic_pager_stale_results_total (Counter): Fetch results discarded after navigation moved on
//
// Handoff Metrics (pkg/handoff):
//   - comic_handoff_stored_total (Counter): Detail handoffs stored
//   - comic_handoff_resolved_total (Counter): Detail handoffs resolved
//   - comic_handoff_misses_total (Counter): Unknown or expired tokens
//   - comic_handoff_errors_total{operation} (Counter): Store operation errors
//
// Example Prometheus Queries:
//
//   # Upstream 404 rate (end-of-catalog pages)
//   rate(comic_errors_total{class="not_found"}[5m])
//
//   # Share of records filtered as promotional
//   sum(rate(comic_filtered_records_total[5m])) by (reason)
//
//   # P95 batch latency
//   histogram_quantile(0.95, rate(comic_batch_duration_seconds_bucket[5m]))
//
//   # Cooldown active
//   comic_rate_limit_cooldown_seconds > 0
