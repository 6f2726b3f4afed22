package domain

// RequestContext is the resolved (identity, tenant, roles) triple for a
// single request. It is built once by the authorization pipeline, threaded
// explicitly through the call chain, and discarded with the request — never
// persisted, cached, or read from ambient state.
type RequestContext struct {
	Email       string
	Roles       StringSet
	Tenant      string
	UserTenants StringSet
}

// HasAnyRole reports whether the context holds at least one of the required
// roles. An empty required set means "authenticated only" and always passes.
func (rc *RequestContext) HasAnyRole(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if rc.Roles.Has(r) {
			return true
		}
	}
	return false
}

// IsPlatform reports whether the request runs under the reserved platform
// tenant. The declared tenant, not the role set, decides which of a user's
// capabilities apply: the same identity holding both a platform role and a
// tenant role gets platform privileges only under PlatformTenantID.
func (rc *RequestContext) IsPlatform() bool {
	return rc.Tenant == PlatformTenantID
}
