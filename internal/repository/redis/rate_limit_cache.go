package redis

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"trustvest-backend/internal/client"
	"trustvest-backend/internal/util"
)

const (
	loginFailPrefix  = "login_fail:"
	loginFailWindow  = 15 * time.Minute
	maxLoginFailures = 10
)

// RateLimitCache tracks failed login attempts per account. Like the profile
// cache it is nil-receiver safe; without Redis no limiting happens, which
// matches the degraded-mode policy for every optional dependency.
type RateLimitCache struct {
	client *client.RedisClient
}

func NewRateLimitCache(rc *client.RedisClient) *RateLimitCache {
	return &RateLimitCache{client: rc}
}

// TooManyFailures reports whether the account is over the failure budget.
// Cache errors fail open: an unreachable Redis must not lock out logins.
func (c *RateLimitCache) TooManyFailures(ctx context.Context, email string) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, loginFailPrefix+email)
	if err != nil {
		return false
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	return count >= maxLoginFailures
}

// RecordFailure increments the failure counter and refreshes the window.
func (c *RateLimitCache) RecordFailure(ctx context.Context, email string) {
	if c == nil || c.client == nil {
		return
	}

	if _, err := c.client.IncrWithExpire(ctx, loginFailPrefix+email, loginFailWindow); err != nil {
		util.Warn("failed to record login failure",
			zap.String("email", email),
			zap.Error(err),
		)
	}
}

// Reset clears the counter after a successful login.
func (c *RateLimitCache) Reset(ctx context.Context, email string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, loginFailPrefix+email); err != nil {
		util.Warn("failed to reset login failures",
			zap.String("email", email),
			zap.Error(err),
		)
	}
}
