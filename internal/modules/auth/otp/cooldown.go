package otp

import (
	"context"
	"time"

	redisc "github.com/signet-id/core/internal/pkg/redis"
)

// RedisCooldown serializes issuance per (user, purpose) with a SETNX lease.
// Two concurrent issue calls for the same key cannot both win the lease, so
// "most recent code wins" stops being a read-time race.
type RedisCooldown struct {
	rc *redisc.Client
}

func NewRedisCooldown(rc *redisc.Client) *RedisCooldown { return &RedisCooldown{rc: rc} }

func (r *RedisCooldown) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.rc.SetNX(ctx, key, 1, ttl)
}

// Release drops a held lease before its TTL runs out.
func (r *RedisCooldown) Release(ctx context.Context, key string) error {
	return r.rc.Del(ctx, key)
}
