package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter shared across instances.
// It is advisory backpressure for abuse-prone endpoints, not a
// correctness mechanism.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow increments the window counter and reports whether the caller is
// under the limit. retryAfter is the remaining window when denied.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, 0, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, 0, err
		}
	}

	if count > int64(limit) {
		retryAfter, err := r.client.TTL(ctx, key)
		if err != nil || retryAfter <= 0 {
			retryAfter = window
		}
		return false, retryAfter, nil
	}
	return true, 0, nil
}

// UserActionKey builds the per-principal window key.
func UserActionKey(userID, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", userID, action)
}
