package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bilgisen/picreel/internal/config"
)

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisClient struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		prefix: cfg.RedisPrefix,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) clipKey(key string) string {
	return r.prefix + "clip:" + key
}

func (r *RedisClient) lockKey(name string) string {
	return r.prefix + "lock:" + name
}

func (r *RedisClient) GetClip(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.clipKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get error: %w", err)
	}
	return data, true, nil
}

func (r *RedisClient) PutClip(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.clipKey(key), data, ttl).Err()
}

func (r *RedisClient) ClearClips(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.clipKey("*"), 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("error deleting keys: %w", err)
		}
	}

	return nil
}

func (r *RedisClient) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := newToken()
	ok, err := r.client.SetNX(ctx, r.lockKey(name), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx error: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *RedisClient) ReleaseLock(ctx context.Context, name, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.lockKey(name)}, token).Err(); err != nil {
		return fmt.Errorf("redis release error: %w", err)
	}
	return nil
}
