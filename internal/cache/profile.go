// Package cache provides a Redis read-through cache in front of the profile store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ratuser/inter-prep-GenAi/internal/interview"
)

const keyPrefix = "interprep:profile:"

// ProfileLoader is the backing source of profiles.
type ProfileLoader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*interview.Profile, error)
}

// ProfileCache serves profiles from Redis and falls back to the loader on a
// miss. Redis failures are logged and bypassed so the cache never blocks a turn.
type ProfileCache struct {
	client *redis.Client
	source ProfileLoader
	ttl    time.Duration
}

// NewClient parses a redis:// URL and verifies the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewProfileCache wraps source with a Redis cache. ttl <= 0 means entries
// never expire and rely on Invalidate.
func NewProfileCache(client *redis.Client, source ProfileLoader, ttl time.Duration) *ProfileCache {
	if ttl < 0 {
		ttl = 0
	}
	return &ProfileCache{client: client, source: source, ttl: ttl}
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

// GetProfile returns the cached profile or loads and caches it. Missing
// profiles are not cached.
func (c *ProfileCache) GetProfile(ctx context.Context, userID uuid.UUID) (*interview.Profile, error) {
	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	switch {
	case err == nil:
		var p interview.Profile
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		slog.Warn("discarding corrupt cached profile", "user_id", userID)
	case !errors.Is(err, redis.Nil):
		slog.Warn("profile cache read failed", "user_id", userID, "error", err)
	}

	p, err := c.source.GetProfile(ctx, userID)
	if err != nil || p == nil {
		return p, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return p, nil
	}
	if err := c.client.Set(ctx, key(userID), data, c.ttl).Err(); err != nil {
		slog.Warn("profile cache write failed", "user_id", userID, "error", err)
	}
	return p, nil
}

// Invalidate drops the cached profile of a user.
func (c *ProfileCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate profile cache: %w", err)
	}
	return nil
}
