// Package metric provides Prometheus metrics for reqguard.
//
// Metrics include:
//
//   - reqguard_validations_total{outcome}
//   - reqguard_http_requests_total{method,status}
//   - reqguard_http_request_duration_seconds{method}
//   - reqguard_config_reloads_total{status}
//
// Metrics live on a private registry and are exposed at /metrics.
package metric
