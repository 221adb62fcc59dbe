package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookcase/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

type cachedAuthor struct {
	ID       uint   `json:"id"`
	LastName string `json:"lastName"`
	Position int    `json:"position"`
}

func newTestClient(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestListCache_GetPut(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	cache := NewListCache(client, "bookcase:", time.Hour, zap.NewNop())

	t.Run("未命中", func(t *testing.T) {
		var dest []cachedAuthor
		hit, err := cache.Get(ctx, "authors", &dest)
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("写入后命中", func(t *testing.T) {
		authors := []cachedAuthor{{ID: 1, LastName: "Čapek", Position: 0}, {ID: 2, LastName: "Hašek", Position: 1}}
		require.NoError(t, cache.Put(ctx, "authors", authors))

		assert.True(t, mr.Exists("bookcase:authors"), "key带前缀")
		assert.InDelta(t, time.Hour.Seconds(), mr.TTL("bookcase:authors").Seconds(), 1)

		var dest []cachedAuthor
		hit, err := cache.Get(ctx, "authors", &dest)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, authors, dest)
	})

	t.Run("损坏数据返回错误", func(t *testing.T) {
		require.NoError(t, mr.Set("bookcase:books", "{not json"))

		var dest []cachedAuthor
		hit, err := cache.Get(ctx, "books", &dest)
		assert.False(t, hit)
		assert.Equal(t, apperrors.ErrCodeRedisError, apperrors.GetAppError(err).Code)
	})
}

func TestListCache_EvictClear(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	cache := NewListCache(client, "bookcase:", 0, zap.NewNop())

	require.NoError(t, cache.Put(ctx, "authors", []int{1}))
	require.NoError(t, cache.Put(ctx, "categories", []int{2}))
	require.NoError(t, mr.Set("other:authors", "keep"))

	require.NoError(t, cache.Evict(ctx, "authors"))
	assert.False(t, mr.Exists("bookcase:authors"))
	assert.True(t, mr.Exists("bookcase:categories"))
	assert.Zero(t, mr.TTL("bookcase:categories"), "ttl为0时不过期")

	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set("bookcase:bulk:"+time.Duration(i).String(), "x"))
	}
	require.NoError(t, cache.Clear(ctx))

	assert.Equal(t, []string{"other:authors"}, mr.Keys(), "只删除本前缀下的key")
}

func TestListCache_CircuitBreaker(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	core, logs := observer.New(zap.InfoLevel)
	cache := NewListCache(client, "bookcase:", 0, zap.New(core))

	t.Run("未命中不触发熔断", func(t *testing.T) {
		var dest []int
		for i := 0; i < 10; i++ {
			_, err := cache.Get(ctx, "missing", &dest)
			require.NoError(t, err)
		}
		assert.Equal(t, circuitbreaker.StateClosed, cache.breaker.State())
	})

	t.Run("连续失败后熔断", func(t *testing.T) {
		mr.Close()

		var dest []int
		for i := 0; i < 5; i++ {
			_, err := cache.Get(ctx, "authors", &dest)
			assert.Error(t, err)
		}
		assert.Equal(t, circuitbreaker.StateOpen, cache.breaker.State())

		_, err := cache.Get(ctx, "authors", &dest)
		assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)

		opened := logs.FilterMessage("Redis缓存熔断，读写回退到数据库").All()
		require.Len(t, opened, 1)
		assert.Equal(t, zap.WarnLevel, opened[0].Level)
		assert.Equal(t, "OPEN", opened[0].ContextMap()["to"])
		assert.EqualValues(t, 5, opened[0].ContextMap()["failures"])
	})
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	store := NewSessionStore(client, "bookcase:")

	t.Run("保存并读取会话", func(t *testing.T) {
		err := store.SaveSession(ctx, 7, map[string]interface{}{"username": "admin", "client_ip": "10.0.0.1"}, time.Hour)
		require.NoError(t, err)

		assert.True(t, mr.Exists("bookcase:session:7"))
		assert.Equal(t, time.Hour, mr.TTL("bookcase:session:7"))

		session, err := store.GetSession(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "admin", session["username"])
	})

	t.Run("删除会话", func(t *testing.T) {
		require.NoError(t, store.DeleteSession(ctx, 7))
		_, err := store.GetSession(ctx, 7)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Token黑名单", func(t *testing.T) {
		revoked, err := store.IsInBlacklist(ctx, "token-a")
		require.NoError(t, err)
		assert.False(t, revoked)

		require.NoError(t, store.AddToBlacklist(ctx, "token-a", time.Minute))

		revoked, err = store.IsInBlacklist(ctx, "token-a")
		require.NoError(t, err)
		assert.True(t, revoked)

		mr.FastForward(2 * time.Minute)
		revoked, err = store.IsInBlacklist(ctx, "token-a")
		require.NoError(t, err)
		assert.False(t, revoked, "过期后自动移出黑名单")
	})

	t.Run("黑名单不保存明文Token", func(t *testing.T) {
		require.NoError(t, store.AddToBlacklist(ctx, "secret-token", time.Minute))
		for _, key := range mr.Keys() {
			assert.NotContains(t, key, "secret-token")
		}
	})
}
