package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crmkit/authcore/internal/adapter/http/dto"
	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
	"github.com/crmkit/authcore/internal/infrastructure/eventpublisher"
	"github.com/crmkit/authcore/internal/infrastructure/metrics"
	"github.com/crmkit/authcore/internal/usecase"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	uc      *usecase.AuthUseCase
	metrics *metrics.Metrics
	logger  zerolog.Logger
	events  *eventpublisher.EventPublisher
}

// NewAuthHandler creates a new auth handler. The event publisher may be nil
// when no event fan-out is configured.
func NewAuthHandler(uc *usecase.AuthUseCase, m *metrics.Metrics, logger zerolog.Logger, events *eventpublisher.EventPublisher) *AuthHandler {
	return &AuthHandler{uc: uc, metrics: m, logger: logger, events: events}
}

// Login verifies credentials and returns a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	pair, err := h.uc.Login(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.observeAuth("failure")
		h.audit(r, domain.AuditActionLoginFailed, "", "", err.Error())
		// The message stays generic on credential failures.
		writeError(w, mapDomainError(err), "login failed", "")
		return
	}

	h.observeAuth("success")
	h.observeToken("access")
	h.observeToken("refresh")
	h.audit(r, domain.AuditActionLogin, pair.UserID, pair.TenantID, "")
	writeJSON(w, http.StatusOK, dto.TokenFromPair(pair))
}

// Refresh rotates a refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	pair, err := h.uc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, mapDomainError(err), "refresh failed", "")
		return
	}

	h.observeToken("access")
	h.observeToken("refresh")
	h.audit(r, domain.AuditActionTokenRefresh, pair.UserID, pair.TenantID, "")
	writeJSON(w, http.StatusOK, dto.TokenFromPair(pair))
}

// Logout revokes the caller's refresh token, or all of their tokens when
// everywhere is set.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if req.Everywhere {
		sc, ok := auth.SecurityContextFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required", "")
			return
		}
		if err := h.uc.LogoutAll(r.Context(), sc.UserID()); err != nil {
			writeError(w, mapDomainError(err), "logout failed", "")
			return
		}
		h.audit(r, domain.AuditActionLogoutAll, sc.UserID(), sc.TenantID(), "")
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
		return
	}

	if err := h.uc.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, mapDomainError(err), "logout failed", "")
		return
	}
	h.audit(r, domain.AuditActionLogout, "", "", "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// ServiceToken mints a service-to-service token. The route is guarded by
// the SYSTEM_ADMIN permission.
func (h *AuthHandler) ServiceToken(w http.ResponseWriter, r *http.Request) {
	var req dto.ServiceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	perms, err := req.PermissionList()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid permissions", err.Error())
		return
	}

	token, err := h.uc.IssueServiceToken(r.Context(), req.Service, perms)
	if err != nil {
		writeError(w, mapDomainError(err), "service token issuance failed", "")
		return
	}

	h.observeToken("service")
	h.audit(r, domain.AuditActionServiceTokenIssued, domain.SystemUserID, domain.SystemTenantID, req.Service)
	writeJSON(w, http.StatusOK, dto.ServiceTokenResponse{Token: token, TokenType: "Bearer"})
}

// Me describes the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sc, ok := auth.SecurityContextFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}
	writeJSON(w, http.StatusOK, dto.PrincipalFromContext(sc))
}

// audit emits a security audit event on the structured log stream.
func (h *AuthHandler) audit(r *http.Request, action domain.AuditAction, userID, tenantID, detail string) {
	ev := domain.NewAuditEvent(action)
	ev.UserID = userID
	ev.TenantID = tenantID
	ev.IPAddress = requestIP(r)
	ev.UserAgent = r.UserAgent()
	if cid, ok := auth.CorrelationIDFrom(r.Context()); ok {
		ev.CorrelationID = cid
	}
	ev.Detail = detail

	if h.events != nil {
		h.events.Enqueue(ev)
	}

	h.logger.Info().
		Str("audit_action", string(ev.Action)).
		Str("user_id", ev.UserID).
		Str("tenant_id", ev.TenantID).
		Str("ip_address", ev.IPAddress).
		Str("user_agent", ev.UserAgent).
		Str("correlation_id", ev.CorrelationID).
		Str("detail", ev.Detail).
		Time("occurred_at", ev.OccurredAt).
		Msg("audit event")
}

func requestIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i != -1 {
		host = host[:i]
	}
	return host
}

func (h *AuthHandler) observeAuth(status string) {
	if h.metrics != nil {
		h.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}
}

func (h *AuthHandler) observeToken(tokenType string) {
	if h.metrics != nil {
		h.metrics.TokensIssued.WithLabelValues(tokenType).Inc()
	}
}
