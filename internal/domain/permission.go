package domain

import "fmt"

// Permission is an atomic capability identified by a stable string code.
type Permission string

const (
	// Platform-wide capabilities
	PermissionAPIRead     Permission = "API_READ"
	PermissionAPIWrite    Permission = "API_WRITE"
	PermissionSystemAdmin Permission = "SYSTEM_ADMIN"

	// Contact capabilities
	PermissionContactRead   Permission = "CONTACT_READ"
	PermissionContactWrite  Permission = "CONTACT_WRITE"
	PermissionContactDelete Permission = "CONTACT_DELETE"

	// Deal capabilities
	PermissionDealRead   Permission = "DEAL_READ"
	PermissionDealWrite  Permission = "DEAL_WRITE"
	PermissionDealDelete Permission = "DEAL_DELETE"

	// Lead capabilities
	PermissionLeadRead  Permission = "LEAD_READ"
	PermissionLeadWrite Permission = "LEAD_WRITE"

	// Pipeline capabilities
	PermissionPipelineRead  Permission = "PIPELINE_READ"
	PermissionPipelineWrite Permission = "PIPELINE_WRITE"

	// Account capabilities
	PermissionAccountRead  Permission = "ACCOUNT_READ"
	PermissionAccountWrite Permission = "ACCOUNT_WRITE"

	// Activity capabilities
	PermissionActivityRead  Permission = "ACTIVITY_READ"
	PermissionActivityWrite Permission = "ACTIVITY_WRITE"

	// Analytics and administration
	PermissionAnalyticsView Permission = "ANALYTICS_VIEW"
	PermissionUserManage    Permission = "USER_MANAGE"
	PermissionTenantManage  Permission = "TENANT_MANAGE"
)

// allPermissions is the closed set of defined permissions.
var allPermissions = map[Permission]bool{
	PermissionAPIRead:       true,
	PermissionAPIWrite:      true,
	PermissionSystemAdmin:   true,
	PermissionContactRead:   true,
	PermissionContactWrite:  true,
	PermissionContactDelete: true,
	PermissionDealRead:      true,
	PermissionDealWrite:     true,
	PermissionDealDelete:    true,
	PermissionLeadRead:      true,
	PermissionLeadWrite:     true,
	PermissionPipelineRead:  true,
	PermissionPipelineWrite: true,
	PermissionAccountRead:   true,
	PermissionAccountWrite:  true,
	PermissionActivityRead:  true,
	PermissionActivityWrite: true,
	PermissionAnalyticsView: true,
	PermissionUserManage:    true,
	PermissionTenantManage:  true,
}

// Code returns the stable string code of the permission.
func (p Permission) Code() string {
	return string(p)
}

// IsValid checks if the permission is a defined permission.
func (p Permission) IsValid() bool {
	return allPermissions[p]
}

// PermissionFromCode resolves a permission by its stable code.
// It fails for any code outside the defined set.
func PermissionFromCode(code string) (Permission, error) {
	p := Permission(code)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: unknown permission code %q", ErrUnknownPermission, code)
	}
	return p, nil
}

// Permissions returns all defined permissions.
func Permissions() []Permission {
	out := make([]Permission, 0, len(allPermissions))
	for p := range allPermissions {
		out = append(out, p)
	}
	return out
}

// PermissionCodes converts a permission slice to its string codes.
func PermissionCodes(perms []Permission) []string {
	if len(perms) == 0 {
		return nil
	}
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		codes = append(codes, p.Code())
	}
	return codes
}
