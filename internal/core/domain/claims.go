package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Claim names as issued by the identity provider. The tenant list is a
// custom attribute; groups may arrive under either key depending on the
// provider's federation mapping.
const (
	ClaimEmail     = "email"
	ClaimGroups    = "groups"
	ClaimGroupsAlt = "cognito:groups"
	ClaimTenants   = "custom:tenants"
)

// maxTenantsClaimLen bounds the raw tenant-list claim. The provider caps
// custom attributes at 2048 characters, which limits an identity to on the
// order of a hundred tenant memberships.
const maxTenantsClaimLen = 2048

// StringSet is an unordered set of strings.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values, ignoring empty strings.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Has reports whether v is a member of the set.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Intersects reports whether the set shares at least one member with other.
func (s StringSet) Intersects(other StringSet) bool {
	for v := range other {
		if s.Has(v) {
			return true
		}
	}
	return false
}

// Values returns the members in sorted order.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Claims is the typed view of a verified bearer token.
type Claims struct {
	Email   string
	Groups  StringSet
	Tenants StringSet
}

// ClaimsFromMap converts the raw claim map of a verified token into a typed
// Claims value. A missing or empty subject email makes the token unusable
// and yields ErrMalformedToken. Absent group or tenant claims yield empty
// sets: a platform-only operator may legitimately hold zero tenants.
func ClaimsFromMap(raw map[string]any) (*Claims, error) {
	email, _ := raw[ClaimEmail].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrMalformedToken)
	}

	groupsClaim := raw[ClaimGroups]
	if groupsClaim == nil {
		groupsClaim = raw[ClaimGroupsAlt]
	}
	groups, err := parseStringList(groupsClaim)
	if err != nil {
		return nil, fmt.Errorf("%w: groups claim: %v", ErrMalformedToken, err)
	}

	tenants, err := ParseTenantsClaim(raw[ClaimTenants])
	if err != nil {
		return nil, err
	}

	return &Claims{Email: email, Groups: groups, Tenants: tenants}, nil
}

// ParseTenantsClaim normalizes the tenant-list claim into a StringSet. The
// provider serializes the custom attribute as a JSON array string, and some
// federation paths escape the quotes a second time, so the same logical
// value can arrive as a native array, as `["a","b"]`, or as `[\"a\",\"b\"]`.
// All three decode to the same set. Absent or empty input is an empty set.
func ParseTenantsClaim(claim any) (StringSet, error) {
	switch v := claim.(type) {
	case nil:
		return StringSet{}, nil
	case []any, []string:
		s, err := parseStringList(v)
		if err != nil {
			return nil, fmt.Errorf("%w: tenants claim: %v", ErrMalformedToken, err)
		}
		return s, nil
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return StringSet{}, nil
		}
		if len(raw) > maxTenantsClaimLen {
			return nil, fmt.Errorf("%w: tenants claim exceeds %d characters", ErrMalformedToken, maxTenantsClaimLen)
		}
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			// Second-pass decode for the escaped-quote encoding.
			unescaped := strings.ReplaceAll(raw, `\"`, `"`)
			if err2 := json.Unmarshal([]byte(unescaped), &list); err2 != nil {
				return nil, fmt.Errorf("%w: tenants claim is not a JSON string array", ErrMalformedToken)
			}
		}
		return NewStringSet(list...), nil
	default:
		return nil, fmt.Errorf("%w: tenants claim has unexpected type %T", ErrMalformedToken, claim)
	}
}

// EncodeTenantsClaim serializes a tenant set into the provider's array-string
// attribute encoding. Inverse of ParseTenantsClaim for the string form.
func EncodeTenantsClaim(tenants StringSet) (string, error) {
	b, err := json.Marshal(tenants.Values())
	if err != nil {
		return "", err
	}
	if len(b) > maxTenantsClaimLen {
		return "", fmt.Errorf("%w: tenant list exceeds %d characters", ErrValidation, maxTenantsClaimLen)
	}
	return string(b), nil
}

func parseStringList(v any) (StringSet, error) {
	switch list := v.(type) {
	case nil:
		return StringSet{}, nil
	case []string:
		return NewStringSet(list...), nil
	case []any:
		out := make(StringSet, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("non-string element %T", item)
			}
			if s != "" {
				out[s] = struct{}{}
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}
