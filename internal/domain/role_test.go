package domain_test

import (
	"errors"
	"testing"

	"github.com/crmkit/authcore/internal/domain"
)

func TestRoleFromCode(t *testing.T) {
	t.Parallel()

	for _, role := range domain.Roles() {
		got, err := domain.RoleFromCode(role.Code())
		if err != nil {
			t.Fatalf("expected %s to resolve, got %v", role.Code(), err)
		}
		if got != role {
			t.Fatalf("expected %s, got %s", role, got)
		}
	}

	if _, err := domain.RoleFromCode("INTERN"); !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if _, err := domain.RoleFromCode(""); !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole for empty code, got %v", err)
	}
}

func TestPermissionFromCode(t *testing.T) {
	t.Parallel()

	for _, perm := range domain.Permissions() {
		got, err := domain.PermissionFromCode(perm.Code())
		if err != nil {
			t.Fatalf("expected %s to resolve, got %v", perm.Code(), err)
		}
		if got != perm {
			t.Fatalf("expected %s, got %s", perm, got)
		}
	}

	if _, err := domain.PermissionFromCode("DEAL_EXPORT"); !errors.Is(err, domain.ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}
}

func TestRolePermissionsNonNil(t *testing.T) {
	t.Parallel()

	for _, role := range domain.Roles() {
		if role.Permissions() == nil {
			t.Fatalf("role %s resolved to a nil permission set", role)
		}
	}

	if got := domain.Role("GHOST").Permissions(); len(got) != 0 {
		t.Fatalf("undefined role should confer nothing, got %v", got)
	}
}

func TestRolePermissionsAreCopies(t *testing.T) {
	t.Parallel()

	perms := domain.RoleSalesRep.Permissions()
	perms[0] = domain.PermissionSystemAdmin

	again := domain.RoleSalesRep.Permissions()
	for _, p := range again {
		if p == domain.PermissionSystemAdmin {
			t.Fatal("mutating the returned slice leaked into the role table")
		}
	}
}

func TestRolePermissionClosure(t *testing.T) {
	t.Parallel()

	// For every role, a context built from that role alone must hold
	// exactly the role's declared permissions.
	for _, role := range domain.Roles() {
		sc := domain.NewSecurityContext(domain.SecurityContextParams{
			UserID: "u-1",
			Roles:  []domain.Role{role},
		})

		for _, p := range role.Permissions() {
			if !sc.HasPermission(p) {
				t.Fatalf("role %s should confer %s", role, p)
			}
		}

		for _, p := range domain.Permissions() {
			declared := false
			for _, dp := range role.Permissions() {
				if dp == p {
					declared = true
					break
				}
			}
			if !declared && sc.HasPermission(p) {
				t.Fatalf("role %s should not confer %s", role, p)
			}
		}
	}
}

func TestSalesRepGrants(t *testing.T) {
	t.Parallel()

	sc := domain.NewSecurityContext(domain.SecurityContextParams{
		UserID: "u-1",
		Roles:  []domain.Role{domain.RoleSalesRep},
	})

	if !sc.HasPermission(domain.PermissionDealRead) {
		t.Fatal("SALES_REP must include DEAL_READ")
	}
	if sc.HasPermission(domain.PermissionSystemAdmin) {
		t.Fatal("SALES_REP must not include SYSTEM_ADMIN")
	}
}
