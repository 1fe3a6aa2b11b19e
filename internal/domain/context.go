package domain

import "time"

// SecurityContext is an immutable snapshot of an authenticated principal,
// built once per request at the authentication boundary. The permission set
// is the closure over the held roles, computed at construction time; checks
// never re-expand roles and never touch I/O.
type SecurityContext struct {
	userID   string
	tenantID string
	username string
	email    string

	roles       map[Role]bool
	permissions map[Permission]bool

	sessionID string
	deviceID  string
	clientIP  string
	userAgent string

	// Token timestamps in epoch milliseconds.
	issuedAt  int64
	expiresAt int64
}

// SecurityContextParams collects the inputs for a SecurityContext snapshot.
type SecurityContextParams struct {
	UserID      string
	TenantID    string
	Username    string
	Email       string
	Roles       []Role
	Permissions []Permission
	SessionID   string
	DeviceID    string
	ClientIP    string
	UserAgent   string
	IssuedAt    int64
	ExpiresAt   int64
}

// NewSecurityContext builds a snapshot, expanding every permission implied
// by the held roles into the explicit permission set.
func NewSecurityContext(p SecurityContextParams) *SecurityContext {
	roles := make(map[Role]bool, len(p.Roles))
	for _, r := range p.Roles {
		roles[r] = true
	}

	return &SecurityContext{
		userID:      p.UserID,
		tenantID:    p.TenantID,
		username:    p.Username,
		email:       p.Email,
		roles:       roles,
		permissions: ExpandPermissions(p.Roles, p.Permissions),
		sessionID:   p.SessionID,
		deviceID:    p.DeviceID,
		clientIP:    p.ClientIP,
		userAgent:   p.UserAgent,
		issuedAt:    p.IssuedAt,
		expiresAt:   p.ExpiresAt,
	}
}

// UserID returns the authenticated user identifier.
func (c *SecurityContext) UserID() string { return c.userID }

// TenantID returns the tenant the principal belongs to.
func (c *SecurityContext) TenantID() string { return c.tenantID }

// Username returns the principal's username.
func (c *SecurityContext) Username() string { return c.username }

// Email returns the principal's email address.
func (c *SecurityContext) Email() string { return c.email }

// SessionID returns the session identifier minted at login.
func (c *SecurityContext) SessionID() string { return c.sessionID }

// DeviceID returns the device identifier, or the service name for
// service-token principals.
func (c *SecurityContext) DeviceID() string { return c.deviceID }

// ClientIP returns the request's client address.
func (c *SecurityContext) ClientIP() string { return c.clientIP }

// UserAgent returns the request's user agent.
func (c *SecurityContext) UserAgent() string { return c.userAgent }

// IssuedAt returns the token issued-at timestamp in epoch milliseconds.
func (c *SecurityContext) IssuedAt() int64 { return c.issuedAt }

// ExpiresAt returns the token expiry timestamp in epoch milliseconds.
func (c *SecurityContext) ExpiresAt() int64 { return c.expiresAt }

// Roles returns a copy of the held roles.
func (c *SecurityContext) Roles() []Role {
	out := make([]Role, 0, len(c.roles))
	for r := range c.roles {
		out = append(out, r)
	}
	return out
}

// Permissions returns a copy of the expanded permission set.
func (c *SecurityContext) Permissions() []Permission {
	out := make([]Permission, 0, len(c.permissions))
	for p := range c.permissions {
		out = append(out, p)
	}
	return out
}

// HasRole reports whether the principal holds the role.
func (c *SecurityContext) HasRole(r Role) bool {
	return c.roles[r]
}

// HasAnyRole reports whether the principal holds at least one of the roles.
func (c *SecurityContext) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if c.roles[r] {
			return true
		}
	}
	return false
}

// HasPermission reports whether the expanded permission set contains p.
func (c *SecurityContext) HasPermission(p Permission) bool {
	return c.permissions[p]
}

// HasAnyPermission reports whether at least one permission is present.
func (c *SecurityContext) HasAnyPermission(perms ...Permission) bool {
	for _, p := range perms {
		if c.permissions[p] {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every permission is present.
func (c *SecurityContext) HasAllPermissions(perms ...Permission) bool {
	for _, p := range perms {
		if !c.permissions[p] {
			return false
		}
	}
	return true
}

// IsTokenExpired reports whether the token backing this context has passed
// its expiry. Pure function of the stored expiry and wall-clock time.
func (c *SecurityContext) IsTokenExpired() bool {
	return c.expiresAt <= time.Now().UnixMilli()
}

// TokenRemaining returns the time until token expiry, zero if expired.
func (c *SecurityContext) TokenRemaining() time.Duration {
	remaining := c.expiresAt - time.Now().UnixMilli()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(remaining) * time.Millisecond
}
