package gateway

import (
	"encoding/json"
	"net/http"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status    string `json:"status"` // "ok" or "degraded"
	BotUserID string `json:"bot_user_id,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 when the channel is authenticated, 503 when the channel
// service is present but not yet connected.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if g.channel != nil {
			resp.BotUserID = g.channel.BotUserID()
			if resp.BotUserID == "" {
				resp.Status = "degraded"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
