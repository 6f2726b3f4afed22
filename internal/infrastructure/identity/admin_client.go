package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/platops/tenant-engine/internal/core/domain"
)

const defaultAdminTimeout = 8 * time.Second

// AdminClient implements ports.IdentityProvider against the provider's
// administrative REST API. Every call carries a bounded timeout; timeouts
// and 5xx responses surface as ErrUpstreamUnavailable so callers never
// mistake an outage for a denial.
type AdminClient struct {
	baseURL  string
	apiToken string
	http     *http.Client
	timeout  time.Duration
}

// NewAdminClient builds a client for the admin API at baseURL,
// authenticating with the given service token.
func NewAdminClient(baseURL, apiToken string, timeout time.Duration) *AdminClient {
	if timeout <= 0 {
		timeout = defaultAdminTimeout
	}
	return &AdminClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		http:     &http.Client{Timeout: timeout},
		timeout:  timeout,
	}
}

// directoryUser is the provider's wire shape. It stays private to this
// package: the rest of the engine sees only domain.User.
type directoryUser struct {
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Groups    []string `json:"groups"`
	Tenants   string   `json:"custom:tenants"`
	Enabled   bool     `json:"enabled"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

func (du *directoryUser) toDomain() (*domain.User, error) {
	tenants, err := domain.ParseTenantsClaim(du.Tenants)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", du.Email, err)
	}
	return &domain.User{
		Email:     du.Email,
		Name:      du.Name,
		Roles:     du.Groups,
		Tenants:   tenants.Values(),
		Enabled:   du.Enabled,
		CreatedAt: time.Unix(du.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(du.UpdatedAt, 0).UTC(),
	}, nil
}

func (c *AdminClient) CreateUser(ctx context.Context, email, name, temporaryCredential string) error {
	body := map[string]any{
		"email":              email,
		"name":               name,
		"temporary_password": temporaryCredential,
	}
	return c.do(ctx, http.MethodPost, "/admin/users", body, nil)
}

func (c *AdminClient) SetTemporaryCredential(ctx context.Context, email, temporaryCredential string) error {
	body := map[string]any{"temporary_password": temporaryCredential}
	return c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(email)+"/password", body, nil)
}

func (c *AdminClient) GetUser(ctx context.Context, email string) (*domain.User, error) {
	var du directoryUser
	if err := c.do(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(email), nil, &du); err != nil {
		return nil, err
	}
	return du.toDomain()
}

func (c *AdminClient) ListUsersByTenant(ctx context.Context, tenantID string) ([]domain.User, error) {
	var dus []directoryUser
	path := "/admin/users?tenant=" + url.QueryEscape(tenantID)
	if err := c.do(ctx, http.MethodGet, path, nil, &dus); err != nil {
		return nil, err
	}

	out := make([]domain.User, 0, len(dus))
	for i := range dus {
		u, err := dus[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

func (c *AdminClient) AddUserToGroup(ctx context.Context, email, group string) error {
	path := "/admin/users/" + url.PathEscape(email) + "/groups/" + url.PathEscape(group)
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

func (c *AdminClient) RemoveUserFromGroup(ctx context.Context, email, group string) error {
	path := "/admin/users/" + url.PathEscape(email) + "/groups/" + url.PathEscape(group)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *AdminClient) SetUserTenants(ctx context.Context, email string, tenants []string) error {
	// The provider stores the tenant list as a single array-string
	// attribute; the whole field is replaced (last-writer-wins).
	encoded, err := domain.EncodeTenantsClaim(domain.NewStringSet(tenants...))
	if err != nil {
		return err
	}
	body := map[string]any{"custom:tenants": encoded}
	return c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(email)+"/attributes", body, nil)
}

func (c *AdminClient) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return fmt.Errorf("identity provider %s %s: %w: %v", method, path, domain.ErrUpstreamUnavailable, err)
		}
		return fmt.Errorf("identity provider %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrUserNotFound
	case resp.StatusCode == http.StatusConflict:
		return domain.ErrUserExists
	case resp.StatusCode >= 500:
		return fmt.Errorf("identity provider %s %s: %w: status %d", method, path, domain.ErrUpstreamUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("identity provider %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
