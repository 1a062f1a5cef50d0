package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRoleCacheTTL = 10 * time.Minute

// RoleCache caches role names by role id.
// Key format: role:name:<role_id>
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleCache creates a RoleCache wrapping the given Redis client. A
// non-positive ttl falls back to defaultRoleCacheTTL.
func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	if ttl <= 0 {
		ttl = defaultRoleCacheTTL
	}
	return &RoleCache{client: client, ttl: ttl}
}

// Get returns the cached name of roleID; ok is false on a miss.
func (c *RoleCache) Get(ctx context.Context, roleID string) (string, bool, error) {
	name, err := c.client.Get(ctx, c.key(roleID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("role cache get: %w", err)
	}
	return name, true, nil
}

// Set caches name for roleID until the TTL elapses.
func (c *RoleCache) Set(ctx context.Context, roleID, name string) error {
	return c.client.Set(ctx, c.key(roleID), name, c.ttl).Err()
}

// Delete evicts roleID.
func (c *RoleCache) Delete(ctx context.Context, roleID string) error {
	return c.client.Del(ctx, c.key(roleID)).Err()
}

func (c *RoleCache) key(roleID string) string {
	return "role:name:" + roleID
}
