package domain

import "time"

// User is the directory view of an identity as held by the external
// identity provider. Roles and tenant memberships are independently
// mutable; a user has no home tenant.
type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Roles     []string  `json:"roles"`
	Tenants   []string  `json:"tenants"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the user currently holds the named role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasTenant reports whether the user is a member of the named tenant.
func (u *User) HasTenant(tenant string) bool {
	for _, t := range u.Tenants {
		if t == tenant {
			return true
		}
	}
	return false
}
