package handler

import (
	"net/http"
	"time"

	"github.com/crmkit/authcore/internal/infrastructure/auth"
)

// TenantHandler exposes the tenant a request resolved to.
type TenantHandler struct{}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler() *TenantHandler {
	return &TenantHandler{}
}

// TenantInfo describes the resolved tenant.
type TenantInfo struct {
	ID        string    `json:"id"`
	Subdomain string    `json:"subdomain"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Current returns the tenant resolved for this request.
func (h *TenantHandler) Current(w http.ResponseWriter, r *http.Request) {
	tenant, ok := auth.TenantFrom(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "tenant_required", "")
		return
	}
	writeJSON(w, http.StatusOK, TenantInfo{
		ID:        tenant.ID,
		Subdomain: tenant.Subdomain,
		Name:      tenant.Name,
		CreatedAt: tenant.CreatedAt,
	})
}
