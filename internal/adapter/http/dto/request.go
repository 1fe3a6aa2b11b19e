package dto

import (
	"errors"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/usecase"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"device_id,omitempty"`
}

// Validate checks the request for missing or malformed fields.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if err := domain.ValidateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.LoginInput {
	return usecase.LoginInput{
		Email:    r.Email,
		Password: r.Password,
		DeviceID: r.DeviceID,
	}
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate checks the request for missing fields.
func (r *RefreshRequest) Validate() error {
	if r.RefreshToken == "" {
		return errors.New("refresh_token is required")
	}
	return nil
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	Everywhere   bool   `json:"everywhere,omitempty"`
}

// Validate checks the request for missing fields.
func (r *LogoutRequest) Validate() error {
	if r.RefreshToken == "" && !r.Everywhere {
		return errors.New("refresh_token is required")
	}
	return nil
}

// ServiceTokenRequest represents a service token issuance request.
type ServiceTokenRequest struct {
	Service     string   `json:"service"`
	Permissions []string `json:"permissions,omitempty"`
}

// Validate checks the request for missing fields.
func (r *ServiceTokenRequest) Validate() error {
	if r.Service == "" {
		return errors.New("service is required")
	}
	return nil
}

// PermissionList decodes the requested permission codes.
func (r *ServiceTokenRequest) PermissionList() ([]domain.Permission, error) {
	perms := make([]domain.Permission, 0, len(r.Permissions))
	for _, code := range r.Permissions {
		p, err := domain.PermissionFromCode(code)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, nil
}
