package handler

import (
	"net/http"

	"github.com/crmkit/authcore/internal/infrastructure/config"
)

// ConfigHandler exposes a masked view of the secure configuration. The
// route is guarded by the SYSTEM_ADMIN permission; even so, every value
// that looks sensitive comes back masked, never plaintext.
type ConfigHandler struct {
	secure *config.SecureConfig
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(secure *config.SecureConfig) *ConfigHandler {
	return &ConfigHandler{secure: secure}
}

// Masked returns the masked configuration dump.
func (h *ConfigHandler) Masked(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.secure.MaskedProperties())
}
