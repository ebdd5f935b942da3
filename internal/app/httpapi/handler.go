package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/aiza-ai/platform/internal/app/metrics"
	"github.com/aiza-ai/platform/internal/config"
	"github.com/aiza-ai/platform/internal/httputil"
	"github.com/aiza-ai/platform/internal/middleware"
	"github.com/aiza-ai/platform/pkg/logger"
)

const (
	metricsPath  = "/metrics"
	readyTimeout = 2 * time.Second
)

// Pinger is a backend that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators of the HTTP surface. Database, Cache
// and RateLimiter are optional.
type Dependencies struct {
	Settings    *config.Settings
	Logger      *logger.Logger
	Database    Pinger
	Cache       Pinger
	RateLimiter *middleware.RateLimiter
}

// apiFunc is a handler whose returned error goes through the global
// exception fallback.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

// handler bundles HTTP endpoints for the platform.
type handler struct {
	settings *config.Settings
	log      *logger.Logger
	db       Pinger
	cache    Pinger
	limiter  *middleware.RateLimiter
	recovery *middleware.Recovery
	router   *mux.Router
	now      func() time.Time
}

// NewHandler returns the router wrapped in the middleware chain.
func NewHandler(deps Dependencies) http.Handler {
	h := newHandler(deps)
	return h.withMiddleware(h.router)
}

func newHandler(deps Dependencies) *handler {
	log := deps.Logger
	if log == nil {
		log = logger.NewDefault("aiza")
	}
	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(deps.Settings.RateLimitPerMinute, deps.Settings.RateLimitPerHour, log)
	}

	h := &handler{
		settings: deps.Settings,
		log:      log,
		db:       deps.Database,
		cache:    deps.Cache,
		limiter:  limiter,
		recovery: middleware.NewRecovery(log, deps.Settings.Debug),
		router:   mux.NewRouter(),
		now:      time.Now,
	}
	h.routes()
	return h
}

func (h *handler) routes() {
	r := h.router
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)

	r.HandleFunc("/", h.wrap(h.root)).Methods(http.MethodGet)
	r.HandleFunc("/health", h.wrap(h.health)).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.wrap(h.ready)).Methods(http.MethodGet)
	r.Handle(metricsPath, metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc(openAPIPath, h.wrap(h.openAPI)).Methods(http.MethodGet)
	r.HandleFunc(docsPath, h.wrap(h.swaggerUI)).Methods(http.MethodGet)
	r.HandleFunc(redocPath, h.wrap(h.redoc)).Methods(http.MethodGet)

	h.mountV1(r.PathPrefix("/api/v1").Subrouter())
}

// withMiddleware applies, outermost first: timing, CORS, tracing, metrics and
// the exception fallback.
func (h *handler) withMiddleware(next http.Handler) http.Handler {
	next = h.recovery.Handler(next)
	next = middleware.Metrics(metricsPath)(next)
	next = middleware.NewTracingMiddleware(h.log).Handler(next)
	next = middleware.NewCORSMiddleware(h.settings.CORSOrigins).Handler(next)
	return middleware.Timing(next)
}

func (h *handler) wrap(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.recovery.HandleError(w, r, err)
		}
	}
}

type rootResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Docs        string `json:"docs"`
	Health      string `json:"health"`
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) error {
	httputil.WriteJSON(w, http.StatusOK, rootResponse{
		Name:        h.settings.AppName,
		Version:     h.settings.Version,
		Status:      "operational",
		Description: h.settings.Description,
		Docs:        docsPath,
		Health:      "/health",
	})
	return nil
}

type healthResponse struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Version   string  `json:"version"`
	Timestamp float64 `json:"timestamp"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) error {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   h.settings.AppName,
		Version:   h.settings.Version,
		Timestamp: float64(h.now().UnixNano()) / float64(time.Second),
	})
	return nil
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ready pings the database and Redis. Unconfigured backends are skipped.
func (h *handler) ready(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := readyResponse{Status: "ready", Checks: map[string]string{}}
	status := http.StatusOK
	for name, p := range map[string]Pinger{"database": h.db, "redis": h.cache} {
		if p == nil {
			resp.Checks[name] = "skipped"
			continue
		}
		if err := p.Ping(ctx); err != nil {
			h.log.WithContext(ctx).WithError(err).WithField("check", name).Warn("readiness check failed")
			resp.Checks[name] = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	httputil.WriteJSON(w, status, resp)
	return nil
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
}

// methodNotAllowed answers 405 and lists the methods the path accepts in the
// Allow header.
func (h *handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if allowed := h.allowedMethods(r); len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
}

var candidateMethods = []string{
	http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions,
	http.MethodPatch, http.MethodPost, http.MethodPut,
}

func (h *handler) allowedMethods(r *http.Request) []string {
	var allowed []string
	for _, m := range candidateMethods {
		alt := r.Clone(r.Context())
		alt.Method = m
		var match mux.RouteMatch
		if h.router.Match(alt, &match) && match.MatchErr == nil {
			allowed = append(allowed, m)
		}
	}
	return allowed
}
