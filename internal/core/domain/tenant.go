package domain

import (
	"regexp"
	"time"
)

// TenantStatus represents the lifecycle state of a tenant.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantInactive  TenantStatus = "inactive"
	TenantDeleted   TenantStatus = "deleted"
)

// Module names. Every tenant carries ModuleTenantAdmin; the rest are
// purchased feature areas toggled per tenant.
const (
	ModulePlatformAdmin   = "platform-admin"
	ModuleTenantAdmin     = "tenant-admin"
	ModuleFinance         = "finance"
	ModuleShortTermRental = "short-term-rental"
)

// PlatformTenantID is the reserved tenant under which platform-scoped
// operations run. It is never stored in the tenant collection and never
// offered to tenant administrators.
const PlatformTenantID = "administration"

// tenantIDPattern constrains tenant identifiers to lowercase URL-safe slugs.
var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// ValidTenantID reports whether id is an acceptable tenant slug. The
// reserved platform id is excluded: it can never be created as a tenant.
func ValidTenantID(id string) bool {
	return id != PlatformTenantID && tenantIDPattern.MatchString(id)
}

// Contact holds the administrative contact details of a tenant.
type Contact struct {
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email" bson:"email"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

// Tenant is an isolated customer namespace. The ID is an immutable
// human-readable slug; deletion is a status change, never a physical
// removal, so the record survives for audit.
type Tenant struct {
	ID        string       `json:"id" bson:"_id"`
	Name      string       `json:"name" bson:"name"`
	Status    TenantStatus `json:"status" bson:"status"`
	Modules   []string     `json:"modules" bson:"modules"`
	Contact   Contact      `json:"contact" bson:"contact"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// IsActive reports whether tenant-scoped operations are allowed.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantActive
}

// EnabledModules returns the tenant's module set.
func (t *Tenant) EnabledModules() StringSet {
	return NewStringSet(t.Modules...)
}

// HasModule reports whether the named module is enabled.
func (t *Tenant) HasModule(module string) bool {
	for _, m := range t.Modules {
		if m == module {
			return true
		}
	}
	return false
}
