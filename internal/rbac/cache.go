package rbac

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedResolver decorates a Resolver with a short-TTL redis cache keyed by
// (userID, locationID). Role and assignment mutations must call Invalidate
// so edits take effect on the next resolution.
type CachedResolver struct {
	inner  Resolver
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedResolver constructs the decorator.
func NewCachedResolver(inner Resolver, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedResolver {
	return &CachedResolver{inner: inner, client: client, ttl: ttl, logger: logger}
}

type cachedSet struct {
	Codes        []string `json:"codes"`
	IsSuperAdmin bool     `json:"is_super_admin"`
}

// Resolve implements Resolver. Cache failures fall through to the inner
// resolver; a cache outage must never fail a request on its own.
func (c *CachedResolver) Resolve(ctx context.Context, userID int64, locationID *int64) (PermissionSet, error) {
	key := c.key(userID, locationID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var cached cachedSet
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			set := NewPermissionSet(cached.Codes...)
			set.IsSuperAdmin = cached.IsSuperAdmin
			return set, nil
		}
	}

	set, err := c.inner.Resolve(ctx, userID, locationID)
	if err != nil {
		return PermissionSet{}, err
	}

	payload, err := json.Marshal(cachedSet{Codes: set.List(), IsSuperAdmin: set.IsSuperAdmin})
	if err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil && c.logger != nil {
			c.logger.Warn("rbac cache set", slog.String("key", key), slog.Any("error", err))
		}
	}
	return set, nil
}

// Invalidate drops every cached set for the user, across all location scopes.
func (c *CachedResolver) Invalidate(ctx context.Context, userID int64) error {
	pattern := fmt.Sprintf("rbac:perms:%d:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("rbac: scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("rbac: delete cache keys: %w", err)
	}
	return nil
}

func (c *CachedResolver) key(userID int64, locationID *int64) string {
	scope := "global"
	if locationID != nil {
		scope = strconv.FormatInt(*locationID, 10)
	}
	return fmt.Sprintf("rbac:perms:%d:%s", userID, scope)
}

var _ Resolver = (*CachedResolver)(nil)
