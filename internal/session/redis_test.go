package session

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"sceneplay/internal/game"
)

// redisClient connects to REDIS_TEST_ADDR, or to a throwaway Redis
// container when it is unset.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		if testing.Short() {
			t.Skip("skipping redis container in short mode")
		}
		addr = startRedis(t)
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func startRedis(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(time.Minute),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start redis container")

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return net.JoinHostPort(host, port.Port())
}

func TestRedisStore_GetPut(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	store := NewRedisStore[game.State](client, "sceneplay-test:", time.Minute)

	id := store.NewID()
	t.Cleanup(func() { client.Del(context.Background(), "sceneplay-test:"+id) })

	_, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	st := game.State{
		CurrentSceneID: "clip",
		InitialSceneID: "intro",
		WinCount:       2,
		Visited:        []game.SceneID{"intro", "clip"},
	}
	require.NoError(t, store.Put(ctx, id, st))

	got, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, st, got)

	ttl, err := client.TTL(ctx, "sceneplay-test:"+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	store := NewRedisStore[game.State](client, "sceneplay-test:", time.Minute)

	id := store.NewID()
	t.Cleanup(func() { client.Del(context.Background(), "sceneplay-test:"+id) })
	require.NoError(t, client.Set(ctx, "sceneplay-test:"+id, "not json", time.Minute).Err())

	_, _, err := store.Get(ctx, id)
	assert.Error(t, err)
}
