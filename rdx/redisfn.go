package rdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"dukaan/config"

	"github.com/redis/go-redis/v9"
)

// Connect builds the shared client and pings it once.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := conn.Ping(ctx).Err(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.RedisAddr, err)
	}
	return conn, nil
}

// GetJSON decodes key into dst. A missing key is (false, nil).
func GetJSON(ctx context.Context, conn redis.Cmdable, key string, dst any) (bool, error) {
	data, err := conn.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key for ttl plus up to 20% jitter.
func SetJSON(ctx context.Context, conn redis.Cmdable, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if ttl > 0 {
		ttl += time.Duration(rand.Int63n(int64(ttl)/5 + 1))
	}
	if err := conn.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func Del(ctx context.Context, conn redis.Cmdable, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := conn.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
