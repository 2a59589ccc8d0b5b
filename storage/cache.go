package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsCacheTTL = 5 * time.Minute

// StatsCache is a best-effort Redis cache for per-user sentiment tallies.
// Every method swallows Redis errors after logging them: the dashboard must
// keep working when the cache is down.
type StatsCache struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewStatsCache connects to Redis at addr and verifies the connection.
func NewStatsCache(ctx context.Context, addr string, log *slog.Logger) (*StatsCache, error) {
	if log == nil {
		log = slog.Default()
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	log.Info("stats cache connected", "addr", addr)
	return &StatsCache{rdb: rdb, log: log}, nil
}

func statsKey(userID uint) string { return fmt.Sprintf("stats:%d", userID) }

// Get returns the cached tallies for a user, reporting a miss on any error.
func (c *StatsCache) Get(ctx context.Context, userID uint) (map[string]int, bool) {
	data, err := c.rdb.Get(ctx, statsKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("stats cache read failed", "user_id", userID, "error", err)
		return nil, false
	}

	var stats map[string]int
	if err := json.Unmarshal(data, &stats); err != nil {
		c.log.Warn("stats cache entry corrupt", "user_id", userID, "error", err)
		return nil, false
	}
	return stats, true
}

// Set stores the tallies for a user with a short TTL.
func (c *StatsCache) Set(ctx context.Context, userID uint, stats map[string]int) {
	data, err := json.Marshal(stats)
	if err != nil {
		c.log.Warn("stats cache marshal failed", "user_id", userID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, statsKey(userID), data, statsCacheTTL).Err(); err != nil {
		c.log.Warn("stats cache write failed", "user_id", userID, "error", err)
	}
}

// Invalidate drops the cached tallies after a new prediction is inserted.
func (c *StatsCache) Invalidate(ctx context.Context, userID uint) {
	if err := c.rdb.Del(ctx, statsKey(userID)).Err(); err != nil {
		c.log.Warn("stats cache invalidation failed", "user_id", userID, "error", err)
	}
}

// Close releases the Redis connection.
func (c *StatsCache) Close() error { return c.rdb.Close() }
