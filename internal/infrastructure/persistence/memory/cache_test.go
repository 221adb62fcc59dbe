package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestListCache(t *testing.T) {
	ctx := context.Background()

	t.Run("容量无效", func(t *testing.T) {
		_, err := NewListCache(0)
		assert.Error(t, err)
	})

	t.Run("读取到的是副本", func(t *testing.T) {
		cache, err := NewListCache(8)
		require.NoError(t, err)

		list := []*entry{{ID: 1, Name: "Poezie"}}
		require.NoError(t, cache.Put(ctx, "categories", list))
		list[0].Name = "changed"

		var got []*entry
		hit, err := cache.Get(ctx, "categories", &got)
		require.NoError(t, err)
		require.True(t, hit)
		assert.Equal(t, "Poezie", got[0].Name)

		got[0].Name = "changed again"
		var again []*entry
		_, _ = cache.Get(ctx, "categories", &again)
		assert.Equal(t, "Poezie", again[0].Name)
	})

	t.Run("LRU淘汰", func(t *testing.T) {
		cache, err := NewListCache(2)
		require.NoError(t, err)

		require.NoError(t, cache.Put(ctx, "authors", []int{1}))
		require.NoError(t, cache.Put(ctx, "books", []int{2}))
		require.NoError(t, cache.Put(ctx, "categories", []int{3}))

		var dest []int
		hit, _ := cache.Get(ctx, "authors", &dest)
		assert.False(t, hit, "最久未使用的key被淘汰")
		hit, _ = cache.Get(ctx, "categories", &dest)
		assert.True(t, hit)
	})

	t.Run("Evict和Clear", func(t *testing.T) {
		cache, err := NewListCache(8)
		require.NoError(t, err)
		require.NoError(t, cache.Put(ctx, "authors", []int{1}))
		require.NoError(t, cache.Put(ctx, "books", []int{2}))

		require.NoError(t, cache.Evict(ctx, "authors"))
		var dest []int
		hit, _ := cache.Get(ctx, "authors", &dest)
		assert.False(t, hit)

		require.NoError(t, cache.Clear(ctx))
		hit, _ = cache.Get(ctx, "books", &dest)
		assert.False(t, hit)
	})
}

func TestNopCache(t *testing.T) {
	ctx := context.Background()
	var cache NopCache

	require.NoError(t, cache.Put(ctx, "authors", []int{1}))
	var dest []int
	hit, err := cache.Get(ctx, "authors", &dest)
	assert.NoError(t, err)
	assert.False(t, hit)
}
