package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/okkema/linkshade/internal/core"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime    time.Duration `json:"uptime_seconds"`
	BotUserID string        `json:"bot_user_id,omitempty"`
	Modules   []string      `json:"modules"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime: time.Since(g.startedAt).Truncate(time.Second),
		}

		if g.channel != nil {
			resp.BotUserID = g.channel.BotUserID()
		}

		for _, info := range core.GetModules() {
			resp.Modules = append(resp.Modules, string(info.ID))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
