package domain

import (
	"time"
)

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// The "logged in" user of the local session simulation. There is no real
// credential check; the record exists so the dashboard has an identity and
// a tenant to partition analyses under.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	TenantID  string    `json:"tenantId"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
