package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the sliding window in a Redis sorted set per key, scored by
// request time, so multiple instances share one window.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore constructs the store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Take(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, time.Duration, error) {
	redisKey := s.prefix + key
	cutoff := now.Add(-window).UnixNano()

	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(cutoff, 10))
	card := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("ratelimit: prune window: %w", err)
	}

	if card.Val() >= int64(limit) {
		oldest, err := s.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err != nil || len(oldest) == 0 {
			return false, window, nil
		}
		oldestAt := time.Unix(0, int64(oldest[0].Score))
		return false, oldestAt.Add(window).Sub(now), nil
	}

	pipe = s.client.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("ratelimit: record request: %w", err)
	}
	return true, 0, nil
}
