package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter, used to slow brute-force login
// attempts. A nil *RateLimiter allows everything.
type RateLimiter struct {
	client Client
}

func NewRateLimiter(client Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r == nil || r.client == nil {
		return true, nil
	}
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}

func LoginKey(email, remoteIP string) string {
	return fmt.Sprintf("rate_limit:login:%s:%s", email, remoteIP)
}
