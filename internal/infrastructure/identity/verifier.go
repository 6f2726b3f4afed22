// Package identity adapts the external identity provider: token
// verification against its published keys and a typed client for its
// administrative API. The engine's core never sees the provider's raw
// response shapes.
package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// OIDCVerifier validates bearer tokens against the identity provider's
// JWKS, discovered from the issuer URL. This is the production verifier.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's configuration and builds a
// verifier bound to the given audience.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover identity provider: %w", err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// Verify checks signature and expiry and returns typed claims. Every
// failure collapses to ErrUnauthenticated for the client; the cause is
// carried in the wrap for server-side logs only.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*domain.Claims, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	var raw map[string]any
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", domain.ErrMalformedToken, err)
	}
	return domain.ClaimsFromMap(raw)
}

// HSVerifier validates HS256 tokens signed with a shared secret. Used in
// development and tests where no OIDC issuer is running; never in
// production.
type HSVerifier struct {
	secret []byte
}

func NewHSVerifier(secret string) *HSVerifier {
	return &HSVerifier{secret: []byte(secret)}
}

func (v *HSVerifier) Verify(_ context.Context, rawToken string) (*domain.Claims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return domain.ClaimsFromMap(claims)
}
