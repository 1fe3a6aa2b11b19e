package domain

import "fmt"

// Role is a named identity that confers a fixed set of permissions.
type Role string

const (
	// RoleSuperAdmin has every defined permission across all tenants.
	RoleSuperAdmin Role = "SUPER_ADMIN"

	// RoleAdmin administers a single tenant.
	RoleAdmin Role = "ADMIN"

	// RoleManager manages pipelines, deals and the reps working them.
	RoleManager Role = "MANAGER"

	// RoleSalesRep works contacts, leads and deals.
	RoleSalesRep Role = "SALES_REP"

	// RoleSupportAgent reads customer data and logs activities.
	RoleSupportAgent Role = "SUPPORT_AGENT"

	// RoleReadOnly can only view resources, no mutations.
	RoleReadOnly Role = "READ_ONLY"

	// RoleSystemService is the non-human principal used for
	// service-to-service calls.
	RoleSystemService Role = "SYSTEM_SERVICE"
)

// rolePermissions is the role to permission mapping, baked in at definition
// time. It is built once and never mutated afterwards; Permissions() hands
// out copies.
var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionAPIRead, PermissionAPIWrite, PermissionSystemAdmin,
		PermissionContactRead, PermissionContactWrite, PermissionContactDelete,
		PermissionDealRead, PermissionDealWrite, PermissionDealDelete,
		PermissionLeadRead, PermissionLeadWrite,
		PermissionPipelineRead, PermissionPipelineWrite,
		PermissionAccountRead, PermissionAccountWrite,
		PermissionActivityRead, PermissionActivityWrite,
		PermissionAnalyticsView, PermissionUserManage, PermissionTenantManage,
	},
	RoleAdmin: {
		PermissionAPIRead, PermissionAPIWrite,
		PermissionContactRead, PermissionContactWrite, PermissionContactDelete,
		PermissionDealRead, PermissionDealWrite, PermissionDealDelete,
		PermissionLeadRead, PermissionLeadWrite,
		PermissionPipelineRead, PermissionPipelineWrite,
		PermissionAccountRead, PermissionAccountWrite,
		PermissionActivityRead, PermissionActivityWrite,
		PermissionAnalyticsView, PermissionUserManage,
	},
	RoleManager: {
		PermissionAPIRead, PermissionAPIWrite,
		PermissionContactRead, PermissionContactWrite,
		PermissionDealRead, PermissionDealWrite, PermissionDealDelete,
		PermissionLeadRead, PermissionLeadWrite,
		PermissionPipelineRead, PermissionPipelineWrite,
		PermissionAccountRead, PermissionAccountWrite,
		PermissionActivityRead, PermissionActivityWrite,
		PermissionAnalyticsView,
	},
	RoleSalesRep: {
		PermissionAPIRead, PermissionAPIWrite,
		PermissionContactRead, PermissionContactWrite,
		PermissionDealRead, PermissionDealWrite,
		PermissionLeadRead, PermissionLeadWrite,
		PermissionPipelineRead,
		PermissionAccountRead,
		PermissionActivityRead, PermissionActivityWrite,
	},
	RoleSupportAgent: {
		PermissionAPIRead,
		PermissionContactRead,
		PermissionDealRead,
		PermissionAccountRead,
		PermissionActivityRead, PermissionActivityWrite,
	},
	RoleReadOnly: {
		PermissionAPIRead,
		PermissionContactRead,
		PermissionDealRead,
		PermissionLeadRead,
		PermissionPipelineRead,
		PermissionAccountRead,
		PermissionActivityRead,
	},
	RoleSystemService: {
		PermissionAPIRead, PermissionAPIWrite, PermissionSystemAdmin,
	},
}

// Code returns the stable string code of the role.
func (r Role) Code() string {
	return string(r)
}

// IsValid checks if the role is a defined role.
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns the permissions the role confers. The returned slice
// is a copy; the underlying mapping is immutable.
func (r Role) Permissions() []Permission {
	perms, ok := rolePermissions[r]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleFromCode resolves a role by its stable code. It fails for any code
// outside the defined set.
func RoleFromCode(code string) (Role, error) {
	r := Role(code)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: unknown role code %q", ErrUnknownRole, code)
	}
	return r, nil
}

// Roles returns all defined roles.
func Roles() []Role {
	out := make([]Role, 0, len(rolePermissions))
	for r := range rolePermissions {
		out = append(out, r)
	}
	return out
}

// RoleCodes converts a role slice to its string codes.
func RoleCodes(roles []Role) []string {
	if len(roles) == 0 {
		return nil
	}
	codes := make([]string, 0, len(roles))
	for _, r := range roles {
		codes = append(codes, r.Code())
	}
	return codes
}

// ExpandPermissions returns the union of the given permissions and every
// permission implied by the given roles.
func ExpandPermissions(roles []Role, direct []Permission) map[Permission]bool {
	set := make(map[Permission]bool, len(direct))
	for _, p := range direct {
		set[p] = true
	}
	for _, r := range roles {
		for _, p := range rolePermissions[r] {
			set[p] = true
		}
	}
	return set
}
