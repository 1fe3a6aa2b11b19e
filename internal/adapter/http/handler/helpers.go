package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crmkit/authcore/internal/adapter/http/dto"
	"github.com/crmkit/authcore/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrAuthenticationRequired),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken),
		errors.Is(err, domain.ErrWrongTokenType),
		errors.Is(err, domain.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccessDenied),
		errors.Is(err, domain.ErrUserInactive),
		errors.Is(err, domain.ErrTenantInvalid):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTenantRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrUnknownPermission):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
