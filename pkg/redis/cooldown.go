package redis

import (
	"context"
	"time"
)

// Cooldown is a SETNX-based rate limiter: a key can be acquired once per ttl
type Cooldown struct{}

func (Cooldown) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return SetNX(ctx, key, "1", ttl)
}
