package metrics

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/aiza-ai/platform/pkg/logger"
)

const sentryFlushTimeout = 2 * time.Second

// SetupConfig selects the error reporting backend.
type SetupConfig struct {
	SentryDSN   string
	Environment string
	Release     string
	Debug       bool
}

// Setup initialises error reporting. Without a DSN it only logs and returns a
// no-op flush. The returned func drains buffered events on shutdown.
func Setup(cfg SetupConfig, log *logger.Logger) (func(), error) {
	if cfg.SentryDSN == "" {
		if log != nil {
			log.Info("monitoring ready (prometheus only)")
		}
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		Debug:       cfg.Debug,
	})
	if err != nil {
		return func() {}, fmt.Errorf("init sentry: %w", err)
	}
	if log != nil {
		log.WithField("environment", cfg.Environment).Info("monitoring ready (prometheus, sentry)")
	}

	return func() { sentry.Flush(sentryFlushTimeout) }, nil
}

// CaptureError forwards err to Sentry. It does nothing when Setup ran
// without a DSN.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}
