package domain

import "time"

// AuditAction identifies an auditable security action.
type AuditAction string

const (
	AuditActionLogin              AuditAction = "auth.login"
	AuditActionLoginFailed        AuditAction = "auth.login_failed"
	AuditActionTokenRefresh       AuditAction = "auth.token_refresh"
	AuditActionLogout             AuditAction = "auth.logout"
	AuditActionLogoutAll          AuditAction = "auth.logout_all"
	AuditActionServiceTokenIssued AuditAction = "auth.service_token_issued"
	AuditActionAccessDenied       AuditAction = "authz.access_denied"
)

// AuditEvent is a security audit trail entry. Events are emitted to the
// structured log stream; a log shipper turns them into the durable trail.
type AuditEvent struct {
	Action        AuditAction
	UserID        string
	TenantID      string
	IPAddress     string
	UserAgent     string
	CorrelationID string
	Detail        string
	OccurredAt    time.Time
}

// NewAuditEvent stamps an event with the current time.
func NewAuditEvent(action AuditAction) AuditEvent {
	return AuditEvent{Action: action, OccurredAt: time.Now().UTC()}
}
