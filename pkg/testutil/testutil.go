// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aiza-ai/platform/internal/config"
	"github.com/aiza-ai/platform/pkg/logger"
)

// Settings builds platform settings from env, falling back to defaults for
// every key not present.
func Settings(t testing.TB, env map[string]string) *config.Settings {
	t.Helper()
	s, err := config.LoadFromEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)
	return s
}

// Logger returns a logger that discards its output.
func Logger() *logger.Logger {
	return logger.New(logger.LoggingConfig{Name: "test", Output: io.Discard})
}

// MockPinger is a backend stub that counts pings and fails with Err.
type MockPinger struct {
	mu    sync.Mutex
	Err   error
	calls int
}

// Ping records the call and returns the configured error.
func (m *MockPinger) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.Err
}

// Calls returns the number of pings seen.
func (m *MockPinger) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
