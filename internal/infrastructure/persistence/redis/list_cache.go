package redis

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
	"github.com/xiebiao/bookcase/pkg/metrics"
)

// scanBatch Clear时每次SCAN返回的key数量
const scanBatch = 100

// ListCache 列表缓存（实现movable.Cache）
// 设计说明：
// 1. 每个集合一个key（{prefix}authors、{prefix}books...），value是整个列表的JSON
// 2. Redis调用经过熔断器：Redis故障时快速失败，上层回退到数据库
// 3. 未命中（redis.Nil）不算失败，不会触发熔断
//
// 教学要点：Cache-Aside
// 读：先查缓存，未命中查数据库再回填
// 写：先写数据库，再刷新缓存（失败时删除key）
type ListCache struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewListCache 创建列表缓存，ttl为0表示不过期
// 熔断器状态变化写入日志（OPEN为警告）
func NewListCache(client redis.UniversalClient, prefix string, ttl time.Duration, log *zap.Logger) *ListCache {
	breaker := circuitbreaker.NewCircuitBreaker("redis-cache", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
	})

	if log == nil {
		log = zap.NewNop()
	}
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State, counts circuitbreaker.Counts) {
		fields := []zap.Field{
			zap.String("breaker", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Uint32("failures", counts.TotalFailures),
			zap.Float64("failure_rate", counts.FailureRate()),
		}
		if to == circuitbreaker.StateOpen {
			log.Warn("Redis缓存熔断，读写回退到数据库", fields...)
			return
		}
		log.Info("Redis缓存熔断器状态变化", fields...)
	})

	return &ListCache{client: client, prefix: prefix, ttl: ttl, breaker: breaker}
}

func (c *ListCache) key(name string) string {
	return c.prefix + name
}

// Get 读取缓存并反序列化到dest，未命中返回false
func (c *ListCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	var data []byte
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.client.Get(ctx, c.key(key)).Bytes()
		return err
	})

	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheRequest(key, "miss")
		return false, nil
	case err != nil:
		metrics.RecordCacheRequest(key, "error")
		return false, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "读取缓存失败")
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.RecordCacheRequest(key, "error")
		return false, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "缓存数据反序列化失败")
	}
	metrics.RecordCacheRequest(key, "hit")
	return true, nil
}

// Put 序列化value并写入缓存
func (c *ListCache) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeInternal, "缓存数据序列化失败")
	}

	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
	})
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "写入缓存失败")
	}
	return nil
}

// Evict 删除单个key
func (c *ListCache) Evict(ctx context.Context, key string) error {
	err := c.breaker.Execute(func() error {
		return c.client.Del(ctx, c.key(key)).Err()
	})
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "删除缓存失败")
	}
	return nil
}

// Clear 删除前缀下的全部key
// 学习要点：
// 1. 生产环境禁止KEYS命令（阻塞Redis），用SCAN分批迭代 + UNLINK异步删除
// 2. 先扫描完再删除：迭代过程中删除key，SCAN游标可能跳过部分key
func (c *ListCache) Clear(ctx context.Context) error {
	err := c.breaker.Execute(func() error {
		var keys []string
		iter := c.client.Scan(ctx, 0, c.prefix+"*", scanBatch).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}

		for start := 0; start < len(keys); start += scanBatch {
			end := min(start+scanBatch, len(keys))
			if err := c.client.Unlink(ctx, keys[start:end]...).Err(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "清空缓存失败")
	}
	return nil
}
