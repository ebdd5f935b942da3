// Package metrics declares the platform Prometheus collectors, serves their
// text exposition and wires optional Sentry error reporting.
package metrics
