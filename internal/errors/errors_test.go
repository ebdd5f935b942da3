package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalMessageDependsOnDebug(t *testing.T) {
	cause := errors.New("boom")

	hidden := Internal(cause, false)
	assert.Equal(t, "An error occurred", hidden.Message)
	assert.Equal(t, http.StatusInternalServerError, hidden.HTTPStatus)

	shown := Internal(cause, true)
	assert.Equal(t, "boom", shown.Message)
	assert.ErrorIs(t, shown, cause)
}

func TestServiceErrorJSON(t *testing.T) {
	body, err := json.Marshal(Internal(errors.New("boom"), false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Internal server error","message":"An error occurred"}`, string(body))
}

func TestAsUnwrapsChains(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", RateLimitExceeded(60, "minute", 1))

	se, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, se.HTTPStatus)
	assert.Equal(t, 1, se.RetryAfter)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
