package dto

import (
	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/usecase"
)

// TokenResponse represents an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	UserID       string `json:"user_id"`
	TenantID     string `json:"tenant_id"`
}

// TokenFromPair converts a use case token pair to a response.
func TokenFromPair(pair *usecase.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		UserID:       pair.UserID,
		TenantID:     pair.TenantID,
	}
}

// ServiceTokenResponse represents an issued service token.
type ServiceTokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// PrincipalResponse describes the authenticated caller.
type PrincipalResponse struct {
	UserID      string   `json:"user_id"`
	TenantID    string   `json:"tenant_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	SessionID   string   `json:"session_id,omitempty"`
	ExpiresAt   int64    `json:"expires_at"`
}

// PrincipalFromContext converts a security context to a response.
func PrincipalFromContext(sc *domain.SecurityContext) *PrincipalResponse {
	return &PrincipalResponse{
		UserID:      sc.UserID(),
		TenantID:    sc.TenantID(),
		Roles:       domain.RoleCodes(sc.Roles()),
		Permissions: domain.PermissionCodes(sc.Permissions()),
		SessionID:   sc.SessionID(),
		ExpiresAt:   sc.ExpiresAt(),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
