package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Validation errors
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooWeak  = errors.New("password does not meet requirements")
	ErrInvalidSubdomain = errors.New("invalid tenant subdomain")
)

// Validation constants
const (
	MinPasswordLength  = 8
	MaxPasswordLength  = 128
	MaxSubdomainLength = 63
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Subdomain labels that never identify a tenant.
var reservedSubdomains = map[string]bool{
	"www": true,
	"api": true,
}

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 254 {
		return ErrInvalidEmail
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the password policy: length bounds plus at
// least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: maximum %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: must contain a letter and a digit", ErrPasswordTooWeak)
	}
	return nil
}

// ValidateSubdomain checks that a label can identify a tenant. Reserved
// labels like www and api are rejected so they never resolve to a tenant.
func ValidateSubdomain(sub string) error {
	sub = strings.ToLower(strings.TrimSpace(sub))
	if sub == "" || len(sub) > MaxSubdomainLength {
		return ErrInvalidSubdomain
	}
	if reservedSubdomains[sub] {
		return ErrInvalidSubdomain
	}
	if !subdomainRegex.MatchString(sub) {
		return ErrInvalidSubdomain
	}
	return nil
}

// IsReservedSubdomain reports whether a host label is reserved and can
// never identify a tenant.
func IsReservedSubdomain(sub string) bool {
	return reservedSubdomains[strings.ToLower(sub)]
}
