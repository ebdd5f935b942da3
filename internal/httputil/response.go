// Package httputil holds the JSON response helpers shared by handlers and
// middleware.
package httputil

import (
	"encoding/json"
	"net/http"
	"strconv"

	svcerrors "github.com/aiza-ai/platform/internal/errors"
)

// WriteJSON encodes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteServiceError renders err as {"error", "message"} with its status.
func WriteServiceError(w http.ResponseWriter, err *svcerrors.ServiceError) {
	if err.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(err.RetryAfter))
	}
	WriteJSON(w, err.HTTPStatus, err)
}
