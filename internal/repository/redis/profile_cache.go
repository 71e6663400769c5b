package redis

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"trustvest-backend/internal/client"
	"trustvest-backend/internal/models"
	"trustvest-backend/internal/util"
)

const (
	profileKeyPrefix = "profile:"
	profileTTL       = 5 * time.Minute
)

// ProfileCache caches outward profile views by user id. All methods are
// nil-receiver safe so services can hold it unconditionally: without Redis
// the cache is simply absent.
type ProfileCache struct {
	client *client.RedisClient
}

func NewProfileCache(rc *client.RedisClient) *ProfileCache {
	return &ProfileCache{client: rc}
}

// Get returns the cached profile, or nil on miss or any cache error.
func (c *ProfileCache) Get(ctx context.Context, userID string) *models.UserProfile {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := c.client.Get(ctx, profileKeyPrefix+userID)
	if err != nil {
		return nil
	}

	var profile models.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		util.Warn("failed to decode cached profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}
	return &profile
}

// Set stores the profile; cache errors are logged, never propagated.
func (c *ProfileCache) Set(ctx context.Context, profile *models.UserProfile) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKeyPrefix+profile.ID, raw, profileTTL); err != nil {
		util.Warn("failed to cache profile",
			zap.String("user_id", profile.ID),
			zap.Error(err),
		)
	}
}

// Invalidate drops a cached profile after a write to the underlying record.
func (c *ProfileCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, profileKeyPrefix+userID); err != nil {
		util.Warn("failed to invalidate cached profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
