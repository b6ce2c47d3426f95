// Package leaderboard caches leaderboard pages in Redis so every dashboard
// poll does not hit MongoDB. The cache is optional: without InitRedis all
// operations degrade to misses.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 30 * time.Second

var rdb *redis.Client

// InitRedis initializes the Redis client and verifies the connection
func InitRedis(addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rdb = client
	return nil
}

func key(limit int64) string {
	return fmt.Sprintf("leaderboard:%d", limit)
}

// Get loads a cached leaderboard page into dest. Returns false on a miss
// or when the cache is disabled.
func Get(ctx context.Context, limit int64, dest interface{}) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	data, err := rdb.Get(ctx, key(limit)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a leaderboard page with a short TTL
func Set(ctx context.Context, limit int64, value interface{}) error {
	if rdb == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key(limit), data, cacheTTL).Err()
}

// Invalidate drops all cached leaderboard pages
func Invalidate(ctx context.Context) error {
	if rdb == nil {
		return nil
	}
	iter := rdb.Scan(ctx, 0, "leaderboard:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
