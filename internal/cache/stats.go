package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by StatsCache.Get when no cached value exists.
var ErrMiss = errors.New("cache miss")

// StatsCache keeps per-mentor financial stat snapshots in Redis. It is a
// best-effort layer: callers log failures and fall through to the store,
// they never fail an operation on a cache error.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatsCache creates a StatsCache with the given snapshot TTL.
func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func statsKey(mentorID uuid.UUID) string {
	return "financial:stats:" + mentorID.String()
}

// Get loads the cached stats snapshot for a mentor into dest.
func (c *StatsCache) Get(ctx context.Context, mentorID uuid.UUID, dest interface{}) error {
	if c == nil || c.rdb == nil {
		return ErrMiss
	}
	raw, err := c.rdb.Get(ctx, statsKey(mentorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("stats cache get: %w", err)
	}
	return json.Unmarshal(raw, dest)
}

// Set stores a stats snapshot for a mentor.
func (c *StatsCache) Set(ctx context.Context, mentorID uuid.UUID, value interface{}) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("stats cache marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, statsKey(mentorID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("stats cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot for a mentor. Mutating operations
// call this after their writes; a failure only delays freshness by the TTL.
func (c *StatsCache) Invalidate(ctx context.Context, mentorID uuid.UUID) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, statsKey(mentorID)).Err(); err != nil {
		return fmt.Errorf("stats cache invalidate: %w", err)
	}
	return nil
}
