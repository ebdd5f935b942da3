// Package httpapi exposes the platform HTTP surface: the service descriptor,
// health, readiness, Prometheus metrics and the versioned API under /api/v1.
package httpapi
