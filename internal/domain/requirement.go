package domain

// Requirement declares what an operation demands of the caller. All four
// clauses must hold for the requirement to be satisfied; empty clauses hold
// trivially. CheckTenant additionally demands that the context carries a
// tenant identifier.
type Requirement struct {
	AllOfPermissions []Permission
	AnyOfPermissions []Permission
	AllOfRoles       []Role
	AnyOfRoles       []Role
	CheckTenant      bool
}

// RequireAll builds a requirement demanding every listed permission.
func RequireAll(perms ...Permission) Requirement {
	return Requirement{AllOfPermissions: perms}
}

// RequireAny builds a requirement demanding at least one listed permission.
func RequireAny(perms ...Permission) Requirement {
	return Requirement{AnyOfPermissions: perms}
}

// RequireAllRoles builds a requirement demanding every listed role.
func RequireAllRoles(roles ...Role) Requirement {
	return Requirement{AllOfRoles: roles}
}

// RequireAnyRole builds a requirement demanding at least one listed role.
func RequireAnyRole(roles ...Role) Requirement {
	return Requirement{AnyOfRoles: roles}
}

// IsZero reports whether the requirement demands nothing.
func (r Requirement) IsZero() bool {
	return len(r.AllOfPermissions) == 0 &&
		len(r.AnyOfPermissions) == 0 &&
		len(r.AllOfRoles) == 0 &&
		len(r.AnyOfRoles) == 0 &&
		!r.CheckTenant
}

// Evaluate checks the requirement against a security context. A nil context
// fails with ErrAuthenticationRequired; an unmet clause fails with an
// AccessDeniedError naming the first missing permission or the unmet
// requirement set.
func (r Requirement) Evaluate(sc *SecurityContext) error {
	if sc == nil {
		return ErrAuthenticationRequired
	}

	for _, p := range r.AllOfPermissions {
		if !sc.HasPermission(p) {
			return &AccessDeniedError{Missing: "permission " + p.Code()}
		}
	}
	if len(r.AnyOfPermissions) > 0 && !sc.HasAnyPermission(r.AnyOfPermissions...) {
		return &AccessDeniedError{Missing: "any of permissions " + joinPermissionCodes(r.AnyOfPermissions)}
	}

	for _, role := range r.AllOfRoles {
		if !sc.HasRole(role) {
			return &AccessDeniedError{Missing: "role " + role.Code()}
		}
	}
	if len(r.AnyOfRoles) > 0 && !sc.HasAnyRole(r.AnyOfRoles...) {
		return &AccessDeniedError{Missing: "any of roles " + joinRoleCodes(r.AnyOfRoles)}
	}

	if r.CheckTenant && sc.TenantID() == "" {
		return &AccessDeniedError{Missing: "tenant"}
	}

	return nil
}

func joinPermissionCodes(perms []Permission) string {
	s := ""
	for i, p := range perms {
		if i > 0 {
			s += ", "
		}
		s += p.Code()
	}
	return "[" + s + "]"
}

func joinRoleCodes(roles []Role) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += ", "
		}
		s += r.Code()
	}
	return "[" + s + "]"
}
