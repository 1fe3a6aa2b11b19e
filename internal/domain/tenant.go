package domain

import "time"

// Tenant is an isolated customer boundary. Every request is scoped to
// exactly one tenant; data isolation depends on resolving it before any
// permission check runs.
type Tenant struct {
	ID        string
	Subdomain string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
