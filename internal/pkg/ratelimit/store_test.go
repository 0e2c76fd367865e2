package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalCounterStoreIncrements(t *testing.T) {
	store := NewLocalCounterStore()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := store.Incr(ctx, "rate_limit:general:account:1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLocalCounterStoreIsolatesKeys(t *testing.T) {
	store := NewLocalCounterStore()
	ctx := context.Background()

	_, err := store.Incr(ctx, "rate_limit:chat:account:1", time.Minute)
	require.NoError(t, err)
	_, err = store.Incr(ctx, "rate_limit:chat:account:1", time.Minute)
	require.NoError(t, err)

	got, err := store.Incr(ctx, "rate_limit:chat:account:2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestLocalCounterStoreWindowExpiry(t *testing.T) {
	store := NewLocalCounterStore()
	ctx := context.Background()
	key := "rate_limit:auth:203.0.113.7"

	got, err := store.Incr(ctx, key, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	got, err = store.Incr(ctx, key, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	time.Sleep(60 * time.Millisecond)

	// A fresh window starts counting from one again.
	got, err = store.Incr(ctx, key, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}
