package domain

// RoleCategory classifies a role by scope.
type RoleCategory string

const (
	// CategoryPlatform roles grant platform-operator privileges. They are
	// never assignable by tenant administrators.
	CategoryPlatform RoleCategory = "platform"
	// CategoryTenantAdmin roles manage users inside a single tenant.
	CategoryTenantAdmin RoleCategory = "tenant-admin"
	// CategoryModule roles belong to a feature module and are assignable
	// only while that module is enabled for the tenant.
	CategoryModule RoleCategory = "module"
)

// Well-known role names.
const (
	RolePlatformAdmin = "platform-admin"
	RoleTenantAdmin   = "tenant-admin"
)

// Role is a named permission bundle. Module is set only for module-category
// roles and names the owning module.
type Role struct {
	Name        string       `json:"name" bson:"_id"`
	Description string       `json:"description" bson:"description"`
	Category    RoleCategory `json:"category" bson:"category"`
	Module      string       `json:"module,omitempty" bson:"module,omitempty"`
}

// DefaultRoleCatalog is the built-in role catalog, used to seed the role
// collection and as a fixture in tests. Module roles follow the
// <module>-<verb> naming convention.
var DefaultRoleCatalog = []Role{
	{Name: RolePlatformAdmin, Description: "Full platform administration", Category: CategoryPlatform},
	{Name: RoleTenantAdmin, Description: "Tenant user and role administration", Category: CategoryTenantAdmin},
	{Name: "finance-read", Description: "Read finance data", Category: CategoryModule, Module: ModuleFinance},
	{Name: "finance-crud", Description: "Create and edit finance data", Category: CategoryModule, Module: ModuleFinance},
	{Name: "finance-export", Description: "Export finance reports", Category: CategoryModule, Module: ModuleFinance},
	{Name: "short-term-rental-read", Description: "Read rental bookings", Category: CategoryModule, Module: ModuleShortTermRental},
	{Name: "short-term-rental-crud", Description: "Manage rental bookings", Category: CategoryModule, Module: ModuleShortTermRental},
}
