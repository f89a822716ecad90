package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClipExpiry(t *testing.T) {
	m := NewMemory("t:")
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.PutClip(ctx, "k", []byte("pcm"), time.Minute))
	data, ok, err := m.GetClip(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("pcm"), data)

	now = now.Add(2 * time.Minute)
	_, ok, _ = m.GetClip(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryLockIsExclusive(t *testing.T) {
	m := NewMemory("t:")
	ctx := context.Background()

	token, ok, err := m.AcquireLock(ctx, "run", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = m.AcquireLock(ctx, "run", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// a stale token does not release someone else's lock
	require.NoError(t, m.ReleaseLock(ctx, "run", "other"))
	_, ok, _ = m.AcquireLock(ctx, "run", time.Minute)
	assert.False(t, ok)

	require.NoError(t, m.ReleaseLock(ctx, "run", token))
	_, ok, _ = m.AcquireLock(ctx, "run", time.Minute)
	assert.True(t, ok)
}

func TestMemoryLockExpires(t *testing.T) {
	m := NewMemory("")
	now := time.Unix(0, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, _ := m.AcquireLock(ctx, "run", time.Second)
	require.True(t, ok)
	now = now.Add(2 * time.Second)
	_, ok, _ = m.AcquireLock(ctx, "run", time.Second)
	assert.True(t, ok)
}

func TestClipStoreLayers(t *testing.T) {
	backend := NewMemory("t:")
	ctx := context.Background()
	require.NoError(t, backend.PutClip(ctx, "shared", []byte{1, 2}, 0))

	cs, err := NewClipStore(backend, 2, time.Hour)
	require.NoError(t, err)

	data, ok, err := cs.Get(ctx, "shared")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2}, data)
	assert.Equal(t, 1, cs.Len())

	require.NoError(t, cs.Put(ctx, "new", []byte{3}))
	data, ok, _ = backend.GetClip(ctx, "new")
	assert.True(t, ok)
	assert.Equal(t, []byte{3}, data)

	require.NoError(t, cs.Purge(ctx))
	_, ok, _ = cs.Get(ctx, "shared")
	assert.False(t, ok)
}
