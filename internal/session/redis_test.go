package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestLookup_UnknownToken(t *testing.T) {
	store, _ := newStore(t, time.Minute)

	_, err := store.Lookup(context.Background(), "tok-unknown")
	require.ErrorIs(t, err, ErrNoBinding)
}

func TestBindAndLookup(t *testing.T) {
	store, _ := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Bind(ctx, "tok-1", "ord-1"))

	orderID, err := store.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", orderID)
}

func TestBind_ReplacesPreviousBinding(t *testing.T) {
	store, _ := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Bind(ctx, "tok-1", "ord-1"))
	require.NoError(t, store.Bind(ctx, "tok-1", "ord-2"))

	orderID, err := store.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-2", orderID)
}

func TestClear_RemovesBinding(t *testing.T) {
	store, _ := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Bind(ctx, "tok-1", "ord-1"))
	require.NoError(t, store.Clear(ctx, "tok-1"))

	_, err := store.Lookup(ctx, "tok-1")
	require.ErrorIs(t, err, ErrNoBinding)

	// Clearing again is a no-op, not an error.
	require.NoError(t, store.Clear(ctx, "tok-1"))
}

func TestLookup_ExpiredBinding(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Bind(ctx, "tok-1", "ord-1"))
	mr.FastForward(2 * time.Minute)

	_, err := store.Lookup(ctx, "tok-1")
	require.ErrorIs(t, err, ErrNoBinding)
}

func TestLookup_RefreshesTTL(t *testing.T) {
	store, mr := newStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Bind(ctx, "tok-1", "ord-1"))

	// Touch the binding just before expiry, then advance past the original
	// deadline: the binding must survive because Lookup slides the TTL.
	mr.FastForward(50 * time.Second)
	_, err := store.Lookup(ctx, "tok-1")
	require.NoError(t, err)

	mr.FastForward(50 * time.Second)
	orderID, err := store.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", orderID)
}
