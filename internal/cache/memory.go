package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is the in-process implementation used when Redis is not configured.
type MemoryCache struct {
	mu     sync.Mutex
	data   map[string]memoryEntry
	prefix string
	now    func() time.Time
}

func NewMemory(prefix string) *MemoryCache {
	return &MemoryCache{
		data:   make(map[string]memoryEntry),
		prefix: prefix,
		now:    time.Now,
	}
}

func (m *MemoryCache) Close() error {
	return nil
}

func (m *MemoryCache) get(key string) (memoryEntry, bool) {
	e, ok := m.data[key]
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(m.now()) {
		delete(m.data, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (m *MemoryCache) set(key string, value []byte, ttl time.Duration) {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = e
}

func (m *MemoryCache) GetClip(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.get(m.prefix + "clip:" + key)
	if !ok {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryCache) PutClip(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	m.set(m.prefix+"clip:"+key, buf, ttl)
	return nil
}

func (m *MemoryCache) ClearClips(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.data {
		if strings.HasPrefix(key, m.prefix+"clip:") {
			delete(m.data, key)
		}
	}
	return nil
}

func (m *MemoryCache) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.prefix + "lock:" + name
	if _, held := m.get(key); held {
		return "", false, nil
	}
	token := newToken()
	m.set(key, []byte(token), ttl)
	return token, true, nil
}

func (m *MemoryCache) ReleaseLock(ctx context.Context, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.prefix + "lock:" + name
	if e, ok := m.get(key); ok && string(e.value) == token {
		delete(m.data, key)
	}
	return nil
}
