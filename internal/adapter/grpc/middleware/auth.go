package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
)

// AuthorizationHeader is the metadata key for authorization.
const AuthorizationHeader = "authorization"

// AuthInterceptor authenticates unary gRPC calls. Internal RPC traffic
// carries service tokens; unlike the HTTP middleware this path is
// fail-closed, since no internal call is legitimately anonymous.
func AuthInterceptor(tokens *auth.TokenProvider) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		values := md.Get(AuthorizationHeader)
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization token")
		}

		token := strings.TrimPrefix(values[0], "Bearer ")

		claims, err := tokens.Parse(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
			return nil, status.Error(codes.Unauthenticated, "expired token")
		}
		if claims.TokenType != string(auth.TokenTypeService) && claims.TokenType != string(auth.TokenTypeAccess) {
			return nil, status.Error(codes.Unauthenticated, "wrong token type")
		}

		roles, err := auth.DecodeRoles(claims.Roles)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		perms, err := auth.DecodePermissions(claims.Permissions)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		sc := domain.NewSecurityContext(domain.SecurityContextParams{
			UserID:      claims.Subject,
			TenantID:    claims.TenantID,
			Roles:       roles,
			Permissions: perms,
			SessionID:   claims.SessionID,
			DeviceID:    claims.DeviceID,
			IssuedAt:    claims.IssuedAtMillis(),
			ExpiresAt:   claims.ExpiresAtMillis(),
		})

		return handler(auth.WithSecurityContext(ctx, sc), req)
	}
}

// RequireInterceptor enforces a requirement on every call it wraps.
func RequireInterceptor(req domain.Requirement) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		request any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		sc, _ := auth.SecurityContextFrom(ctx)
		if err := req.Evaluate(sc); err != nil {
			if errors.Is(err, domain.ErrAuthenticationRequired) {
				return nil, status.Error(codes.Unauthenticated, "unauthorized")
			}
			return nil, status.Error(codes.PermissionDenied, err.Error())
		}
		return handler(ctx, request)
	}
}

// ChainUnaryServer chains multiple unary interceptors.
func ChainUnaryServer(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			next := chain
			chain = func(ctx context.Context, req interface{}) (interface{}, error) {
				return interceptor(ctx, req, info, next)
			}
		}
		return chain(ctx, req)
	}
}
