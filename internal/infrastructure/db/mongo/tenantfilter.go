package mongo

import "go.mongodb.org/mongo-driver/bson"

// TenantField is the mandatory tenant column on every tenant-scoped
// collection. It exists exclusively to carry the isolation predicate.
const TenantField = "tenant_id"

// FilterByTenant returns a copy of the base filter scoped to the given
// tenant. The tenant id travels as a bson value, never by string
// concatenation. Every repository read and write on a tenant-scoped
// collection passes through here; any tenant key already present in the
// base filter is overwritten.
func FilterByTenant(base bson.M, tenantID string) bson.M {
	scoped := make(bson.M, len(base)+1)
	for k, v := range base {
		scoped[k] = v
	}
	scoped[TenantField] = tenantID
	return scoped
}
