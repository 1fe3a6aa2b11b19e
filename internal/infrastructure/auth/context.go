package auth

import (
	"context"

	"github.com/crmkit/authcore/internal/domain"
)

type securityContextKey struct{}
type tenantKey struct{}
type correlationKey struct{}

// WithSecurityContext installs the snapshot on a derived request context.
// The snapshot lives exactly as long as the request context does: it dies
// with the request on every path, including panics and cancellation, so no
// explicit clearing step can be forgotten.
func WithSecurityContext(ctx context.Context, sc *domain.SecurityContext) context.Context {
	if sc == nil {
		return ctx
	}
	return context.WithValue(ctx, securityContextKey{}, sc)
}

// SecurityContextFrom extracts the installed snapshot. The second return
// distinguishes "unauthenticated" (no snapshot) from "authenticated with
// zero permissions".
func SecurityContextFrom(ctx context.Context) (*domain.SecurityContext, bool) {
	if ctx == nil {
		return nil, false
	}
	sc, ok := ctx.Value(securityContextKey{}).(*domain.SecurityContext)
	if !ok || sc == nil {
		return nil, false
	}
	return sc, true
}

// HasSecurityContext reports whether a snapshot is installed.
func HasSecurityContext(ctx context.Context) bool {
	_, ok := SecurityContextFrom(ctx)
	return ok
}

// WithTenant records the resolved tenant for the request.
func WithTenant(ctx context.Context, tenant *domain.Tenant) context.Context {
	if tenant == nil {
		return ctx
	}
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// TenantFrom extracts the resolved tenant, if any.
func TenantFrom(ctx context.Context) (*domain.Tenant, bool) {
	if ctx == nil {
		return nil, false
	}
	tenant, ok := ctx.Value(tenantKey{}).(*domain.Tenant)
	if !ok || tenant == nil {
		return nil, false
	}
	return tenant, true
}

// WithCorrelationID records the request correlation identifier.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFrom extracts the correlation identifier, if any.
func CorrelationIDFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(correlationKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
