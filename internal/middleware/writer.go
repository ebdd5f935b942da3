package middleware

import "net/http"

// responseWriter wraps http.ResponseWriter to capture the status code and to
// run a hook right before the header is sent.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     bool
	beforeWrite func(http.Header)
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.statusCode = code
	rw.written = true
	if rw.beforeWrite != nil {
		rw.beforeWrite(rw.ResponseWriter.Header())
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Written reports whether the header has been sent.
func (rw *responseWriter) Written() bool {
	return rw.written
}
