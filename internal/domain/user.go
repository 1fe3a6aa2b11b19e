package domain

import "time"

// User represents a platform user. Persistence of users lives outside this
// core; the type exists for the lookups the security decisions need.
type User struct {
	ID             string
	TenantID       string
	Email          string
	Name           string
	HashedPassword string
	Roles          []Role
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Well-known identifiers for the distinguished system principal used by
// service tokens. These are part of the token compatibility surface.
const (
	SystemUserID   = "00000000-0000-0000-0000-000000000001"
	SystemTenantID = "00000000-0000-0000-0000-000000000000"
)
