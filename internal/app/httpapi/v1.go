package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aiza-ai/platform/internal/httputil"
)

// featureSet lists the product areas advertised by the status endpoint.
type featureSet struct {
	VoiceAI              bool `json:"voice_ai"`
	DocumentIntelligence bool `json:"document_intelligence"`
	MultiAgent           bool `json:"multi_agent"`
	Analytics            bool `json:"analytics"`
}

type statusResponse struct {
	Status   string     `json:"status"`
	Version  string     `json:"version"`
	Features featureSet `json:"features"`
}

// advertisedFeatures is static; the ENABLE_* settings do not feed it.
var advertisedFeatures = featureSet{
	VoiceAI:              true,
	DocumentIntelligence: true,
	MultiAgent:           true,
	Analytics:            true,
}

// mountV1 registers the versioned API on r, which is already scoped to
// /api/v1.
func (h *handler) mountV1(r *mux.Router) {
	r.Use(h.limiter.Handler)
	r.HandleFunc("/status", h.wrap(h.apiStatus)).Methods(http.MethodGet)
}

func (h *handler) apiStatus(w http.ResponseWriter, _ *http.Request) error {
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		Status:   "operational",
		Version:  "1.0.0",
		Features: advertisedFeatures,
	})
	return nil
}
