package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ClipStore puts a bounded in-process LRU in front of a shared Cache.
type ClipStore struct {
	local   *lru.Cache[string, []byte]
	backend Cache
	ttl     time.Duration
}

func NewClipStore(backend Cache, size int, ttl time.Duration) (*ClipStore, error) {
	if size <= 0 {
		size = 1
	}
	local, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &ClipStore{local: local, backend: backend, ttl: ttl}, nil
}

// Get looks in the LRU first and promotes backend hits into it.
func (c *ClipStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok := c.local.Get(key); ok {
		return data, true, nil
	}
	if c.backend == nil {
		return nil, false, nil
	}
	data, ok, err := c.backend.GetClip(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	c.local.Add(key, data)
	return data, true, nil
}

func (c *ClipStore) Put(ctx context.Context, key string, data []byte) error {
	c.local.Add(key, data)
	if c.backend == nil {
		return nil
	}
	return c.backend.PutClip(ctx, key, data, c.ttl)
}

// Purge empties the LRU and the backend clip namespace.
func (c *ClipStore) Purge(ctx context.Context) error {
	c.local.Purge()
	if c.backend == nil {
		return nil
	}
	return c.backend.ClearClips(ctx)
}

func (c *ClipStore) Len() int {
	return c.local.Len()
}
