package middleware

import (
	"net/http"
	"time"

	"github.com/aiza-ai/platform/internal/app/metrics"
)

// Metrics records the request counter and duration histogram. Scrapes of the
// metrics endpoint itself are not counted.
func Metrics(metricsPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == metricsPath {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			next.ServeHTTP(w, r)
			metrics.RecordRequest(time.Since(start))
		})
	}
}
