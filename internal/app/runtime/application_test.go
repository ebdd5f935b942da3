package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiza-ai/platform/pkg/logger"
	"github.com/aiza-ai/platform/pkg/testutil"
)

func newTestApp(t *testing.T, env map[string]string) *Application {
	t.Helper()
	app, err := NewApplication(testutil.Settings(t, env), testutil.Logger())
	require.NoError(t, err)
	app.initSchema = func(context.Context) error { return nil }
	return app
}

func TestNewApplicationRequiresSettings(t *testing.T) {
	_, err := NewApplication(nil, nil)
	assert.Error(t, err)
}

func TestNewApplicationUsesSettingsAddress(t *testing.T) {
	app := newTestApp(t, map[string]string{"HOST": "127.0.0.1", "PORT": "9100"})
	assert.Equal(t, "127.0.0.1:9100", app.httpServer.Addr)
	assert.NotNil(t, app.cache)
}

func TestNewApplicationToleratesBadRedisURL(t *testing.T) {
	app := newTestApp(t, map[string]string{"REDIS_URL": "not-a-url"})
	assert.Nil(t, app.cache)
}

func TestStartFailsWhenSchemaInitFails(t *testing.T) {
	app := newTestApp(t, nil)
	app.initSchema = func(context.Context) error { return errors.New("connection refused") }

	err := app.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init database")
}

func TestStartFailsOnInvalidSentryDSN(t *testing.T) {
	app := newTestApp(t, map[string]string{"SENTRY_DSN": "not a dsn"})

	err := app.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup monitoring")
}

func TestServeAndShutdown(t *testing.T) {
	app := newTestApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Process-Time"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.NoError(t, app.Shutdown(context.Background()))
}

func TestHandlerServesStatus(t *testing.T) {
	app := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStartLaunchesCleanupOnce(t *testing.T) {
	app := newTestApp(t, nil)
	starts := 0
	app.startCleanup = func(context.Context) { starts++ }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx))
	require.NoError(t, app.Start(ctx))
	assert.Equal(t, 1, starts)
}

func TestStartWarnsAboutDefaultSecretsInProduction(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantWarn bool
	}{
		{"production defaults", map[string]string{"ENVIRONMENT": "production"}, true},
		{"production configured", map[string]string{"ENVIRONMENT": "production", "SECRET_KEY": "s", "JWT_SECRET": "j"}, false},
		{"development defaults", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			app, err := NewApplication(testutil.Settings(t, tt.env), logger.New(logger.LoggingConfig{Output: &buf}))
			require.NoError(t, err)
			app.initSchema = func(context.Context) error { return nil }
			app.startCleanup = func(context.Context) {}

			require.NoError(t, app.Start(context.Background()))
			assert.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("default value in production")))
		})
	}
}
