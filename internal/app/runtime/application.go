package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aiza-ai/platform/internal/app/httpapi"
	"github.com/aiza-ai/platform/internal/app/metrics"
	"github.com/aiza-ai/platform/internal/cache"
	"github.com/aiza-ai/platform/internal/config"
	"github.com/aiza-ai/platform/internal/database"
	"github.com/aiza-ai/platform/internal/middleware"
	"github.com/aiza-ai/platform/pkg/logger"
)

const (
	shutdownTimeout     = 10 * time.Second
	startupTimeout      = 30 * time.Second
	limiterCleanupEvery = 10 * time.Minute
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Settings
	log        *logger.Logger
	db         *database.DB
	cache      *cache.Client
	limiter    *middleware.RateLimiter
	httpServer *http.Server
	flush      func()

	cleanupOnce sync.Once

	// initSchema and startCleanup run during startup; tests replace them.
	initSchema   func(ctx context.Context) error
	startCleanup func(ctx context.Context)
}

// NewApplication constructs the application. Backends are configured but not
// contacted until Run.
func NewApplication(cfg *config.Settings, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("settings are required")
	}
	if log == nil {
		log = logger.NewDefault("aiza")
	}

	db, err := database.Open(database.Config{
		URL:         cfg.DatabaseURL,
		PoolSize:    cfg.DBPoolSize,
		MaxOverflow: cfg.DBMaxOverflow,
	})
	if err != nil {
		return nil, fmt.Errorf("configure database: %w", err)
	}

	deps := httpapi.Dependencies{
		Settings: cfg,
		Logger:   log,
		Database: db,
	}

	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.New(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("redis disabled")
		} else {
			deps.Cache = redisClient
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitPerHour, log)
	deps.RateLimiter = limiter

	app := &Application{
		cfg:     cfg,
		log:     log,
		db:      db,
		cache:   redisClient,
		limiter: limiter,
		httpServer: &http.Server{
			Addr:              cfg.Address(),
			Handler:           httpapi.NewHandler(deps),
			ReadHeaderTimeout: 5 * time.Second,
		},
		flush: func() {},
	}
	app.initSchema = func(ctx context.Context) error {
		return db.InitSchema(ctx, cfg.Version)
	}
	app.startCleanup = func(ctx context.Context) {
		limiter.StartCleanup(ctx, limiterCleanupEvery)
	}
	return app, nil
}

// Handler exposes the HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.httpServer.Handler
}

// Start runs the startup hook: schema creation and monitoring setup.
func (a *Application) Start(ctx context.Context) error {
	a.log.Infof("Starting %s...", a.cfg.AppName)
	if a.cfg.IsProduction() && a.cfg.UsesDefaultSecrets() {
		a.log.Warn("SECRET_KEY or JWT_SECRET still holds the default value in production")
	}

	initCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	if err := a.initSchema(initCtx); err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	flush, err := metrics.Setup(metrics.SetupConfig{
		SentryDSN:   a.cfg.SentryDSN,
		Environment: a.cfg.Environment,
		Release:     a.cfg.Version,
		Debug:       a.cfg.Debug && !a.cfg.IsProduction(),
	}, a.log)
	if err != nil {
		return fmt.Errorf("setup monitoring: %w", err)
	}
	a.flush = flush

	a.cleanupOnce.Do(func() { a.startCleanup(ctx) })
	a.log.Info("Platform initialized successfully")
	return nil
}

// Run starts the application and blocks until the context is cancelled or
// the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.httpServer.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.logBanner(ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the HTTP server and releases backends.
func (a *Application) Shutdown(ctx context.Context) error {
	a.log.Infof("Shutting down %s...", a.cfg.AppName)

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.WithError(err).Warn("error closing redis connection")
		}
	}
	a.flush()

	return errors.Join(errs...)
}

func (a *Application) logBanner(addr string) {
	base := "http://" + addr
	a.log.WithFields(map[string]interface{}{
		"server":      base,
		"docs":        base + "/docs",
		"metrics":     base + "/metrics",
		"health":      base + "/health",
		"environment": a.cfg.Environment,
		"version":     a.cfg.Version,
		"features": map[string]bool{
			"voice_ai":              a.cfg.EnableVoice,
			"document_intelligence": a.cfg.EnableDocumentAI,
			"multi_agent":           a.cfg.EnableAgents,
			"analytics":             a.cfg.EnableAnalytics,
		},
	}).Infof("%s v%s listening", a.cfg.AppName, a.cfg.Version)
}
