package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &out))
	return out
}

func TestNewEmitsJSONWithName(t *testing.T) {
	var buf bytes.Buffer
	log := New(LoggingConfig{Name: "aiza", Output: &buf})

	log.Info("platform initialized")

	line := decodeLine(t, &buf)
	assert.Equal(t, "aiza", line["name"])
	assert.Equal(t, "INFO", line["levelname"])
	assert.Equal(t, "platform initialized", line["message"])
	assert.NotEmpty(t, line["asctime"])
}

func TestLevelNameUpperCaseLeavesFieldsAlone(t *testing.T) {
	var buf bytes.Buffer
	log := New(LoggingConfig{Output: &buf})

	log.WithField("raw", `"levelname":"info"`).Info(`"levelname":"info"`)

	line := decodeLine(t, &buf)
	assert.Equal(t, "INFO", line["levelname"])
	assert.Equal(t, `"levelname":"info"`, line["message"])
	assert.Equal(t, `"levelname":"info"`, line["raw"])
}

func TestDefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(LoggingConfig{Output: &buf})

	log.Debug("hidden")
	assert.Zero(t, buf.Len())
	assert.Equal(t, "aiza", log.Name())
}

func TestLogRequestCarriesTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := New(LoggingConfig{Output: &buf})

	ctx := WithTraceID(context.Background(), "trace-1")
	log.LogRequest(ctx, http.MethodGet, "/health", http.StatusOK, 1500*time.Microsecond)

	line := decodeLine(t, &buf)
	assert.Equal(t, "trace-1", line["trace_id"])
	assert.Equal(t, "/health", line["path"])
	assert.EqualValues(t, 200, line["status"])
	assert.EqualValues(t, 1.5, line["duration_ms"])
}

func TestLogRequestLevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := New(LoggingConfig{Output: &buf})

	log.LogRequest(context.Background(), http.MethodGet, "/", http.StatusInternalServerError, time.Millisecond)
	assert.Equal(t, "ERROR", decodeLine(t, &buf)["levelname"])

	buf.Reset()
	log.LogRequest(context.Background(), http.MethodGet, "/", http.StatusNotFound, time.Millisecond)
	assert.Equal(t, "WARNING", decodeLine(t, &buf)["levelname"])
}

func TestTraceIDMissing(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))
}
