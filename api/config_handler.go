package api

import (
	"net/http"

	"github.com/pdlmetrix/pdlmetrix/internal/config"
)

// ConfigResponse is the payload of GET /api/v1/config.
type ConfigResponse struct {
	Config  config.Config         `json:"config"`
	Secrets []config.SecretStatus `json:"secrets"`
}

// handleGetConfig returns the running configuration. Secrets are blanked
// and reported through their status only.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:  redactConfig(s.cfg),
			Secrets: config.CheckSecrets(s.cfg),
		},
	})
}

// redactConfig returns a copy of cfg without passwords.
func redactConfig(cfg *config.Config) config.Config {
	out := *cfg
	out.Admin.Password = ""
	out.Store.Redis.Password = ""
	out.API.CORSOrigins = append([]string(nil), cfg.API.CORSOrigins...)
	return out
}
