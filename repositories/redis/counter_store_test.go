package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupCounterStoreTest starts miniredis and returns a connected store
func setupCounterStoreTest(t *testing.T) (*CounterStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), Config{
		URL:      "redis://" + mr.Addr(),
		PoolSize: 5,
	})
	require.NoError(t, err)

	store := NewCounterStore(client, zap.NewNop())
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestNewClient(t *testing.T) {
	t.Run("connects", func(t *testing.T) {
		mr := miniredis.RunT(t)

		client, err := NewClient(context.Background(), Config{URL: "redis://" + mr.Addr(), PoolSize: 3})
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, 3, client.Options().PoolSize)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewClient(context.Background(), Config{URL: "http://not-redis"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid redis url")
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewClient(context.Background(), Config{URL: "redis://" + addr, DialTimeout: 200 * time.Millisecond})
		assert.Error(t, err)
	})
}

func TestCounterStore_Incr(t *testing.T) {
	store, mr := setupCounterStoreTest(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Incr(ctx, "rl:chat:user-1:100")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	value, err := mr.Get("rl:chat:user-1:100")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestCounterStore_Expire(t *testing.T) {
	store, mr := setupCounterStoreTest(t)
	ctx := context.Background()

	_, err := store.Incr(ctx, "rl:chat:user-1:100")
	require.NoError(t, err)
	require.NoError(t, store.Expire(ctx, "rl:chat:user-1:100", 60*time.Second))

	assert.Equal(t, 60*time.Second, mr.TTL("rl:chat:user-1:100"))

	mr.FastForward(61 * time.Second)
	assert.False(t, mr.Exists("rl:chat:user-1:100"))
}

func TestCounterStore_Errors(t *testing.T) {
	store, mr := setupCounterStoreTest(t)
	ctx := context.Background()

	mr.SetError("server unavailable")

	_, err := store.Incr(ctx, "k")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis INCR k")

	err = store.Expire(ctx, "k", time.Second)
	assert.Error(t, err)

	mr.SetError("")
	assert.NoError(t, store.Ping(ctx))
}
