package memory

import (
	"context"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"

	apperrors "github.com/xiebiao/bookcase/pkg/errors"
	"github.com/xiebiao/bookcase/pkg/metrics"
)

// ListCache 进程内LRU列表缓存（单实例部署或开发环境使用）
// 设计说明：
// 1. 保存JSON字节而不是对象指针，调用方拿到的是独立副本，修改不会污染缓存
// 2. 与Redis实现使用同一套序列化，切换驱动时缓存内容一致
type ListCache struct {
	entries *lru.Cache[string, []byte]
}

// NewListCache 创建容量为size的LRU缓存
func NewListCache(size int) (*ListCache, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, apperrors.Wrap(err, "创建内存缓存失败")
	}
	return &ListCache{entries: entries}, nil
}

func (c *ListCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, ok := c.entries.Get(key)
	if !ok {
		metrics.RecordCacheRequest(key, "miss")
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		metrics.RecordCacheRequest(key, "error")
		return false, apperrors.Wrap(err, "缓存数据反序列化失败")
	}
	metrics.RecordCacheRequest(key, "hit")
	return true, nil
}

func (c *ListCache) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, "缓存数据序列化失败")
	}
	c.entries.Add(key, data)
	return nil
}

func (c *ListCache) Evict(ctx context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

func (c *ListCache) Clear(ctx context.Context) error {
	c.entries.Purge()
	return nil
}

// NopCache 不缓存（cache.driver=none），每次读取都回源数据库
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string, dest any) (bool, error) { return false, nil }
func (NopCache) Put(ctx context.Context, key string, value any) error        { return nil }
func (NopCache) Evict(ctx context.Context, key string) error                 { return nil }
func (NopCache) Clear(ctx context.Context) error                             { return nil }
