package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// ProcessTimeHeader carries the handling time in seconds.
const ProcessTimeHeader = "X-Process-Time"

// Timing stamps every response with the elapsed processing time. The value
// is taken when the header is sent since headers cannot change afterwards.
func Timing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		stamp := func(h http.Header) {
			h.Set(ProcessTimeHeader, formatSeconds(time.Since(start)))
		}

		rw := newResponseWriter(w)
		rw.beforeWrite = stamp
		next.ServeHTTP(rw, r)

		if !rw.Written() {
			stamp(w.Header())
		}
	})
}

func formatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
