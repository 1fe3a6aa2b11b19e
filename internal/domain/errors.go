package domain

import (
	"errors"
	"fmt"
)

var (
	// Token errors
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("unexpected token type")
	ErrTokenRevoked   = errors.New("token has been revoked")

	// RBAC errors
	ErrUnknownRole       = errors.New("unknown role")
	ErrUnknownPermission = errors.New("unknown permission")

	// Authorization errors
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAccessDenied           = errors.New("access denied")

	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUserNotFound       = errors.New("user not found")

	// Tenant errors
	ErrTenantRequired = errors.New("tenant could not be resolved")
	ErrTenantInvalid  = errors.New("tenant is invalid or inactive")
	ErrTenantNotFound = errors.New("tenant not found")

	// Cryptography errors
	ErrEncryption   = errors.New("encryption failure")
	ErrSecureConfig = errors.New("secure configuration failure")
)

// AccessDeniedError carries the requirement that was not met. The message
// names internals of the authorization model and must be sanitized before
// crossing a public API boundary.
type AccessDeniedError struct {
	Missing string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: missing %s", e.Missing)
}

// Unwrap lets errors.Is match ErrAccessDenied.
func (e *AccessDeniedError) Unwrap() error {
	return ErrAccessDenied
}

// SecureConfigError wraps a decryption failure with the offending property
// key. The secret value itself is never included.
type SecureConfigError struct {
	Key string
	Err error
}

func (e *SecureConfigError) Error() string {
	return fmt.Sprintf("secure config: property %q: %v", e.Key, e.Err)
}

func (e *SecureConfigError) Unwrap() error {
	return ErrSecureConfig
}
