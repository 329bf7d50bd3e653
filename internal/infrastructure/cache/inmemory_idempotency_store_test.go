package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Claim(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		claimed, err := store.Claim(ctx, "tenant:POST:/transactions:a", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = store.Claim(ctx, "tenant:POST:/transactions:a", time.Hour)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("expired claim can be taken again", func(t *testing.T) {
		claimed, err := store.Claim(ctx, "b", time.Minute)
		require.NoError(t, err)
		require.True(t, claimed)

		now = now.Add(time.Minute)
		claimed, err = store.Claim(ctx, "b", time.Minute)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("released key can be claimed", func(t *testing.T) {
		_, err := store.Claim(ctx, "c", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "c"))

		claimed, err := store.Claim(ctx, "c", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("releasing an unknown key is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Release(ctx, "missing"))
	})
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := store.Claim(context.Background(), "same", time.Hour)
			assert.NoError(t, err)
			if claimed {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, winners.Load())
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := range 5 {
		_, err := store.Claim(ctx, fmt.Sprintf("short-%d", i), time.Second)
		require.NoError(t, err)
	}
	_, err := store.Claim(ctx, "long", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 6, store.Size())

	now = now.Add(time.Minute)
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
