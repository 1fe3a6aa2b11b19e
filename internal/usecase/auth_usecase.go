package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
)

// AuthUseCase handles credential verification and token lifecycle.
type AuthUseCase struct {
	users   UserRepository
	tenants TenantDirectory
	store   RefreshTokenStore
	tokens  *auth.TokenProvider
}

// NewAuthUseCase creates a new auth use case.
func NewAuthUseCase(users UserRepository, tenants TenantDirectory, store RefreshTokenStore, tokens *auth.TokenProvider) *AuthUseCase {
	return &AuthUseCase{
		users:   users,
		tenants: tenants,
		store:   store,
		tokens:  tokens,
	}
}

// LoginInput represents login input.
type LoginInput struct {
	Email    string
	Password string
	DeviceID string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	UserID       string
	TenantID     string
}

// Login verifies credentials and issues an access/refresh token pair.
// Lookup failures and password mismatches both map to
// domain.ErrInvalidCredentials so callers cannot enumerate accounts.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	user, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := verifyPassword(user.HashedPassword, input.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	tenant, err := uc.tenants.GetByID(ctx, user.TenantID)
	if err != nil || !tenant.Active {
		return nil, domain.ErrTenantInvalid
	}

	if err := uc.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return nil, err
	}

	meta := auth.SessionMeta{
		SessionID: newSessionID(),
		DeviceID:  input.DeviceID,
	}
	return uc.issuePair(ctx, user, meta)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. Roles and permissions are re-derived from the user record,
// not copied from the old token, so role changes take effect on rotation.
func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := uc.tokens.Parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != string(auth.TokenTypeRefresh) {
		return nil, domain.ErrWrongTokenType
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil, domain.ErrExpiredToken
	}

	live, err := uc.store.Exists(ctx, claims.Subject, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, domain.ErrTokenRevoked
	}

	user, err := uc.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	if err := uc.store.Revoke(ctx, claims.Subject, claims.TokenID); err != nil {
		return nil, err
	}

	meta := auth.SessionMeta{
		SessionID: newSessionID(),
		DeviceID:  claims.DeviceID,
	}
	return uc.issuePair(ctx, user, meta)
}

// Logout revokes the refresh token's server-side record. Revoking an already
// revoked token is not an error.
func (uc *AuthUseCase) Logout(ctx context.Context, refreshToken string) error {
	claims, err := uc.tokens.Parse(refreshToken)
	if err != nil {
		return err
	}
	if claims.TokenType != string(auth.TokenTypeRefresh) {
		return domain.ErrWrongTokenType
	}
	return uc.store.Revoke(ctx, claims.Subject, claims.TokenID)
}

// LogoutAll revokes every live refresh token for a user.
func (uc *AuthUseCase) LogoutAll(ctx context.Context, userID string) error {
	return uc.store.RevokeAll(ctx, userID)
}

// IssueServiceToken mints a short-lived token for service-to-service calls.
// With no explicit permissions the token carries the SYSTEM_SERVICE grant.
func (uc *AuthUseCase) IssueServiceToken(ctx context.Context, serviceName string, perms []domain.Permission) (string, error) {
	if len(perms) == 0 {
		perms = domain.RoleSystemService.Permissions()
	}
	for _, p := range perms {
		if !p.IsValid() {
			return "", domain.ErrUnknownPermission
		}
	}
	return uc.tokens.CreateServiceToken(serviceName, perms)
}

func (uc *AuthUseCase) issuePair(ctx context.Context, user *domain.User, meta auth.SessionMeta) (*TokenPair, error) {
	perms := effectivePermissions(user.Roles)

	access, err := uc.tokens.CreateAccessToken(user.ID, user.TenantID, user.Roles, perms, meta)
	if err != nil {
		return nil, err
	}

	refresh, err := uc.tokens.CreateRefreshToken(user.ID, user.TenantID)
	if err != nil {
		return nil, err
	}

	// Parse the freshly minted refresh token to recover its token_id for
	// the revocation store.
	rc, err := uc.tokens.Parse(refresh)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, user.ID, rc.TokenID, uc.tokens.RefreshTTL()); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(uc.tokens.AccessTTL().Seconds()),
		UserID:       user.ID,
		TenantID:     user.TenantID,
	}, nil
}

// effectivePermissions flattens the role set into a sorted permission list.
func effectivePermissions(roles []domain.Role) []domain.Permission {
	set := domain.ExpandPermissions(roles, nil)
	perms := make([]domain.Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// verifyPassword verifies a password against a bcrypt hash.
func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// HashPassword validates a password against the policy and hashes it with
// bcrypt.
func HashPassword(password string) (string, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func newSessionID() string {
	return ulid.Make().String()
}
