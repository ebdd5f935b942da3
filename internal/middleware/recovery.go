package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/aiza-ai/platform/internal/app/metrics"
	svcerrors "github.com/aiza-ai/platform/internal/errors"
	"github.com/aiza-ai/platform/internal/httputil"
	"github.com/aiza-ai/platform/pkg/logger"
)

// Recovery turns panics and handler errors into JSON error responses.
type Recovery struct {
	logger *logger.Logger
	debug  bool
}

// NewRecovery creates the error fallback. With debug set the response message
// carries the error text.
func NewRecovery(log *logger.Logger, debug bool) *Recovery {
	return &Recovery{logger: log, debug: debug}
}

// Handler recovers panics raised by next.
func (m *Recovery) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}

			err, ok := p.(error)
			if !ok {
				err = fmt.Errorf("%v", p)
			}
			m.report(r, err, debug.Stack())
			if rw.Written() {
				return
			}
			httputil.WriteServiceError(rw, svcerrors.Internal(err, m.debug))
		}()

		next.ServeHTTP(rw, r)
	})
}

// HandleError renders an error returned by a handler. Service errors that are
// not internal failures keep their own status; anything else becomes a 500.
// Once the header is sent the error is only reported.
func (m *Recovery) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if headerSent(w) {
		m.report(r, err, debug.Stack())
		return
	}

	if se, ok := svcerrors.As(err); ok && se.Code != svcerrors.CodeInternal {
		if se.HTTPStatus >= http.StatusInternalServerError {
			m.logger.WithContext(r.Context()).WithError(err).Warn("request failed")
		}
		httputil.WriteServiceError(w, se)
		return
	}

	var cause error = err
	if se, ok := svcerrors.As(err); ok && se.Err != nil {
		cause = se.Err
	}
	m.report(r, cause, debug.Stack())
	httputil.WriteServiceError(w, svcerrors.Internal(cause, m.debug))
}

func (m *Recovery) report(r *http.Request, err error, stack []byte) {
	metrics.RecordError()
	metrics.CaptureError(err)
	m.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"stack":  string(stack),
	}).Errorf("Global exception: %v", err)
}

// headerSent walks the writer chain looking for a wrapper that knows whether
// the status line went out.
func headerSent(w http.ResponseWriter) bool {
	for w != nil {
		if rw, ok := w.(interface{ Written() bool }); ok && rw.Written() {
			return true
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return false
		}
		w = u.Unwrap()
	}
	return false
}
