package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/platops/tenant-engine/internal/core/domain"
)

// defaultTenantTTL bounds how stale a cached tenant record may get. Kept
// short because a suspended tenant must lock out within this window even if
// an invalidation is lost.
const (
	defaultTenantTTL = 30 * time.Second

	// defaultCacheOpTimeout bounds a single cache operation. The cache is
	// best-effort: a slow Redis must degrade to repository reads, never
	// stall the request behind it.
	defaultCacheOpTimeout = 2 * time.Second
)

// TenantCache is a read-through cache of tenant records backed by Redis.
// Key format: tenant:<id>
type TenantCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// NewTenantCache wraps the given Redis client. Non-positive ttl or timeout
// values fall back to the defaults.
func NewTenantCache(client *redis.Client, ttl, timeout time.Duration) *TenantCache {
	if ttl <= 0 {
		ttl = defaultTenantTTL
	}
	if timeout <= 0 {
		timeout = defaultCacheOpTimeout
	}
	return &TenantCache{client: client, ttl: ttl, timeout: timeout}
}

// Get returns the cached tenant, or (nil, nil) on a miss.
func (c *TenantCache) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tenant cache get: %w", err)
	}

	var t domain.Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("tenant cache decode: %w", err)
	}
	return &t, nil
}

// Set stores the tenant record for the cache TTL.
func (c *TenantCache) Set(ctx context.Context, tenant *domain.Tenant) error {
	raw, err := json.Marshal(tenant)
	if err != nil {
		return fmt.Errorf("tenant cache encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Set(ctx, c.key(tenant.ID), raw, c.ttl).Err()
}

// Invalidate drops the cached record for a tenant.
func (c *TenantCache) Invalidate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *TenantCache) key(id string) string {
	return "tenant:" + id
}
