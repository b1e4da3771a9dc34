package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneplay/internal/game"
)

func TestMemoryStore_GetPut(t *testing.T) {
	store := NewMemoryStore[game.State](0)
	ctx := context.Background()

	st := game.State{CurrentSceneID: "intro", InitialSceneID: "intro", WinCount: 1}
	require.NoError(t, store.Put(ctx, "sid", st))

	got, ok, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, st, got)

	_, ok, err = store.Get(ctx, "non-existent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Overwrite(t *testing.T) {
	store := NewMemoryStore[int](0)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sid", 10))
	require.NoError(t, store.Put(ctx, "sid", 20))

	got, ok, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20, got)
}

func TestMemoryStore_NewID(t *testing.T) {
	store := NewMemoryStore[string](0)

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := store.NewID()
		assert.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true

		_, err := uuid.Parse(id)
		assert.NoError(t, err, "id %q", id)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore[int](0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			assert.NoError(t, store.Put(ctx, "key", v))
		}(i)
	}
	wg.Wait()

	_, ok, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore[int](time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sid", 1))

	now = now.Add(59 * time.Second)
	_, ok, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, ok)

	// Put refreshes the expiry.
	require.NoError(t, store.Put(ctx, "sid", 2))
	now = now.Add(59 * time.Second)
	got, ok, _ := store.Get(ctx, "sid")
	assert.True(t, ok)
	assert.Equal(t, 2, got)

	now = now.Add(2 * time.Second)
	_, ok, err = store.Get(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore[int](time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Put(ctx, fmt.Sprintf("old-%d", i), i))
	}
	now = now.Add(30 * time.Second)
	require.NoError(t, store.Put(ctx, "fresh", 1))

	now = now.Add(45 * time.Second)
	assert.Equal(t, 5, store.Sweep())
	assert.Len(t, store.m, 1)

	_, ok, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, store.Sweep())
}

func TestMemoryStore_SweepWithoutTTL(t *testing.T) {
	store := NewMemoryStore[int](0)
	require.NoError(t, store.Put(context.Background(), "sid", 1))
	assert.Equal(t, 0, store.Sweep())
}

var _ Sweeper = (*MemoryStore[int])(nil)
