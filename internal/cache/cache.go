// Package cache holds synthesized narration clips and the single-flight run lock.
package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/bilgisen/picreel/internal/config"
	"github.com/bilgisen/picreel/internal/logger"
)

// Cache is the storage used for clip reuse and the generation run lock.
type Cache interface {
	GetClip(ctx context.Context, key string) ([]byte, bool, error)
	PutClip(ctx context.Context, key string, data []byte, ttl time.Duration) error
	ClearClips(ctx context.Context) error

	// AcquireLock takes name for ttl. It returns a token when the lock was free
	// and ok=false when another holder owns it.
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, name, token string) error

	Close() error
}

// New connects to Redis when configured and falls back to the in-memory cache otherwise.
func New(cfg *config.Config) Cache {
	if cfg.RedisURL == "" {
		return NewMemory(cfg.RedisPrefix)
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory cache")
		return NewMemory(cfg.RedisPrefix)
	}
	return client
}

func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
