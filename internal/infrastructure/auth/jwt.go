package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/crmkit/authcore/internal/domain"
)

// TokenType discriminates the three token flavors. Consumers that expect a
// specific type must check it; a refresh endpoint must reject an access
// token and vice versa.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
	TokenTypeService TokenType = "service"
)

// Claims is the single source of truth for token structure. The JSON claim
// names are a compatibility surface: tokens issued before a migration must
// keep parsing.
type Claims struct {
	TenantID    string   `json:"tenant_id,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	TokenType   string   `json:"type"`
	SessionID   string   `json:"session_id,omitempty"`
	DeviceID    string   `json:"device_id,omitempty"`
	TokenID     string   `json:"token_id,omitempty"`
	jwt.RegisteredClaims
}

// IssuedAtMillis returns the issued-at timestamp in epoch milliseconds.
func (c *Claims) IssuedAtMillis() int64 {
	if c.IssuedAt == nil {
		return 0
	}
	return c.IssuedAt.UnixMilli()
}

// ExpiresAtMillis returns the expiry timestamp in epoch milliseconds.
func (c *Claims) ExpiresAtMillis() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.UnixMilli()
}

// SessionMeta carries optional per-session claims for access tokens.
type SessionMeta struct {
	SessionID string
	DeviceID  string
}

// TokenProvider mints and verifies signed tokens (HS256).
//
// Failure policy: every accessor on this type is fail-closed and returns an
// error wrapping domain.ErrInvalidToken. The HTTP authentication middleware
// is the one documented fail-open call site; it maps these errors to an
// anonymous request instead of propagating them.
type TokenProvider struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider creates a token provider. accessTTL bounds access and
// service tokens, refreshTTL bounds refresh tokens.
func NewTokenProvider(secret string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secretKey:  []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration {
	return p.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration {
	return p.refreshTTL
}

// CreateAccessToken mints a short-lived token carrying the caller's roles
// and permissions so request handling never needs a database round trip.
func (p *TokenProvider) CreateAccessToken(userID, tenantID string, roles []domain.Role, perms []domain.Permission, meta SessionMeta) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID:    tenantID,
		Roles:       domain.RoleCodes(roles),
		Permissions: domain.PermissionCodes(perms),
		TokenType:   string(TokenTypeAccess),
		SessionID:   meta.SessionID,
		DeviceID:    meta.DeviceID,
		TokenID:     uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.accessTTL)),
		},
	}

	return p.sign(claims)
}

// CreateRefreshToken mints a long-lived token carrying identity only. No
// role or permission claims: authorization is re-derived from the user
// repository at refresh time so stale privileges cannot outlive the access
// token that granted them.
func (p *TokenProvider) CreateRefreshToken(userID, tenantID string) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID:  tenantID,
		TokenType: string(TokenTypeRefresh),
		TokenID:   uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.refreshTTL)),
		},
	}

	return p.sign(claims)
}

// CreateServiceToken mints a token for the distinguished system principal
// used by service-to-service calls. The calling service's name rides in the
// device_id claim for later extraction.
func (p *TokenProvider) CreateServiceToken(serviceName string, perms []domain.Permission) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID:    domain.SystemTenantID,
		Roles:       []string{domain.RoleSystemService.Code()},
		Permissions: domain.PermissionCodes(perms),
		TokenType:   string(TokenTypeService),
		DeviceID:    serviceName,
		TokenID:     uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   domain.SystemUserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.accessTTL)),
		},
	}

	return p.sign(claims)
}

func (p *TokenProvider) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and structural validity and returns the claims.
// It deliberately does not check expiry; callers that need that use
// IsExpired. Fails with an error wrapping domain.ErrInvalidToken on
// signature mismatch, malformed structure or unsupported algorithm.
func (p *TokenProvider) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return p.secretKey, nil
		},
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.TokenType == "" {
		return nil, fmt.Errorf("%w: missing type claim", domain.ErrInvalidToken)
	}

	return claims, nil
}

// Validate reports whether the signature verifies and the structure parses.
// Never returns an error.
func (p *TokenProvider) Validate(tokenString string) bool {
	_, err := p.Parse(tokenString)
	return err == nil
}

// IsExpired reports whether the token is past its expiry. Fail-closed: an
// invalid or unparseable token counts as expired.
func (p *TokenProvider) IsExpired(tokenString string) bool {
	claims, err := p.Parse(tokenString)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.After(time.Now())
}

// UserIDFromToken returns the subject claim.
func (p *TokenProvider) UserIDFromToken(tokenString string) (string, error) {
	claims, err := p.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// TenantIDFromToken returns the tenant_id claim.
func (p *TokenProvider) TenantIDFromToken(tokenString string) (string, error) {
	claims, err := p.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.TenantID, nil
}

// TypeOfToken returns the type claim.
func (p *TokenProvider) TypeOfToken(tokenString string) (TokenType, error) {
	claims, err := p.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return TokenType(claims.TokenType), nil
}

// RolesFromToken decodes the roles claim. Unknown role codes fail the whole
// call: a token carrying roles this build does not define is not trusted.
func (p *TokenProvider) RolesFromToken(tokenString string) ([]domain.Role, error) {
	claims, err := p.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	return DecodeRoles(claims.Roles)
}

// PermissionsFromToken decodes the permissions claim, failing on unknown
// permission codes.
func (p *TokenProvider) PermissionsFromToken(tokenString string) ([]domain.Permission, error) {
	claims, err := p.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	return DecodePermissions(claims.Permissions)
}

// DecodeRoles converts role codes from a token into domain roles.
func DecodeRoles(codes []string) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(codes))
	for _, code := range codes {
		role, err := domain.RoleFromCode(code)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownRole) {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
			}
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// DecodePermissions converts permission codes from a token into domain
// permissions.
func DecodePermissions(codes []string) ([]domain.Permission, error) {
	perms := make([]domain.Permission, 0, len(codes))
	for _, code := range codes {
		perm, err := domain.PermissionFromCode(code)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownPermission) {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
			}
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, nil
}
