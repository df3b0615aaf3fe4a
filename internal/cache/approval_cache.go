// Package cache keeps month approval flags close to the readers of
// the approval status endpoint.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/staff-schedule/internal/domain"
)

// ApprovalCache stores the approved flag per month. Get reports found=false
// on a miss. Writers of a committed approval use Set; readers filling a miss
// use SetIfAbsent so a value read before a concurrent approval never replaces
// the one written after it.
type ApprovalCache interface {
	Get(ctx context.Context, ym domain.YearMonth) (approved bool, found bool, err error)
	Set(ctx context.Context, ym domain.YearMonth, approved bool) error
	SetIfAbsent(ctx context.Context, ym domain.YearMonth, approved bool) error
	Invalidate(ctx context.Context, ym domain.YearMonth) error
}

const keyPrefix = "schedule:approved:"

// RedisApprovalCache is the go-redis backed ApprovalCache.
type RedisApprovalCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisApprovalCache returns a cache whose entries expire after ttl; a
// zero ttl keeps them until overwritten.
func NewRedisApprovalCache(client *redis.Client, ttl time.Duration) *RedisApprovalCache {
	return &RedisApprovalCache{client: client, ttl: ttl}
}

func (c *RedisApprovalCache) Get(ctx context.Context, ym domain.YearMonth) (bool, bool, error) {
	val, err := c.client.Get(ctx, key(ym)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	switch val {
	case "1":
		return true, true, nil
	case "0":
		return false, true, nil
	}
	return false, false, fmt.Errorf("unexpected cached approval value %q", val)
}

func (c *RedisApprovalCache) Set(ctx context.Context, ym domain.YearMonth, approved bool) error {
	return c.client.Set(ctx, key(ym), encode(approved), c.ttl).Err()
}

// SetIfAbsent stores the flag with SET NX; an existing value is kept.
func (c *RedisApprovalCache) SetIfAbsent(ctx context.Context, ym domain.YearMonth, approved bool) error {
	return c.client.SetNX(ctx, key(ym), encode(approved), c.ttl).Err()
}

func (c *RedisApprovalCache) Invalidate(ctx context.Context, ym domain.YearMonth) error {
	return c.client.Del(ctx, key(ym)).Err()
}

func key(ym domain.YearMonth) string {
	return keyPrefix + ym.String()
}

func encode(approved bool) string {
	if approved {
		return "1"
	}
	return "0"
}

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, domain.YearMonth) (bool, bool, error) { return false, false, nil }

func (Noop) Set(context.Context, domain.YearMonth, bool) error { return nil }

func (Noop) SetIfAbsent(context.Context, domain.YearMonth, bool) error { return nil }

func (Noop) Invalidate(context.Context, domain.YearMonth) error { return nil }
