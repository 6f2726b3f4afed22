package ports

import (
	"context"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// TokenVerifier validates a raw bearer token and returns its typed claims.
// Any verification failure (malformed, expired, bad signature) yields an
// error wrapping domain.ErrUnauthenticated or domain.ErrMalformedToken.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.Claims, error)
}

// IdentityProvider is the typed adapter over the external identity
// provider's administrative API. The engine depends on this contract, never
// on the provider's raw response shapes. All methods must honour context
// cancellation; provider timeouts surface as errors wrapping
// domain.ErrUpstreamUnavailable so callers can tell "denied" from "could
// not check".
type IdentityProvider interface {
	// CreateUser provisions a directory user with a temporary credential.
	// The credential is write-once: the provider forces a change on first
	// login and this API never reads it back.
	CreateUser(ctx context.Context, email, name, temporaryCredential string) error
	// SetTemporaryCredential replaces the user's credential, invalidating
	// the previous one at the provider.
	SetTemporaryCredential(ctx context.Context, email, temporaryCredential string) error
	GetUser(ctx context.Context, email string) (*domain.User, error)
	// ListUsersByTenant returns directory users whose tenant-list attribute
	// contains the given tenant.
	ListUsersByTenant(ctx context.Context, tenantID string) ([]domain.User, error)
	// AddUserToGroup and RemoveUserFromGroup are idempotent at the
	// provider: repeating either is a no-op, not an error.
	AddUserToGroup(ctx context.Context, email, group string) error
	RemoveUserFromGroup(ctx context.Context, email, group string) error
	// SetUserTenants replaces the user's tenant-list attribute wholesale.
	// Field-level last-writer-wins; concurrent replacements do not merge.
	SetUserTenants(ctx context.Context, email string, tenants []string) error
}
