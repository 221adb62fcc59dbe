package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/bookcase/internal/domain/movable"
	"github.com/xiebiao/bookcase/internal/infrastructure/config"
	"github.com/xiebiao/bookcase/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookcase/internal/infrastructure/persistence/mysql"
	redisstore "github.com/xiebiao/bookcase/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcase/internal/interface/http/handler"
	"github.com/xiebiao/bookcase/pkg/jwt"
	"github.com/xiebiao/bookcase/pkg/mq"
)

// App serve命令运行所需的对象
type App struct {
	Engine *gin.Engine
	Health *handler.HealthHandler
}

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 教学说明：
// 有些依赖的构造函数参数不是直接的类型，需要从Config中提取，
// 或者需要返回cleanup函数（关闭连接），这时需要编写自定义Provider

// provideDB 创建MySQL连接，cleanup关闭连接池
func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis 创建Redis连接，cleanup关闭连接
func provideRedis(cfg *config.Config, log *zap.Logger) (goredis.UniversalClient, func(), error) {
	client, err := redisstore.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideCache 按cache.driver选择列表缓存实现
// 列表缓存使用{prefix}list:子前缀，newData清空缓存时不会删除会话和Token黑名单
func provideCache(cfg *config.Config, client goredis.UniversalClient, log *zap.Logger) (movable.Cache, error) {
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		return redisstore.NewListCache(client, cfg.Cache.Prefix+"list:", cfg.Cache.TTL, log), nil
	case config.CacheMemory:
		return memory.NewListCache(cfg.Cache.Size)
	case config.CacheNone:
		return memory.NopCache{}, nil
	default:
		return nil, fmt.Errorf("未知的缓存驱动: %s", cfg.Cache.Driver)
	}
}

// providePublisher 按mq.driver选择事件发布者
func providePublisher(cfg *config.Config, log *zap.Logger) (mq.Publisher, func(), error) {
	var (
		publisher mq.Publisher
		err       error
	)
	switch cfg.MQ.Driver {
	case config.MQRabbitMQ:
		publisher, err = mq.NewRabbitPublisher(cfg.MQ.URL, cfg.MQ.Exchange, log)
	case config.MQNATS:
		publisher, err = mq.NewNATSPublisher(cfg.MQ.URL, cfg.MQ.Subject, log)
	default:
		publisher = mq.NopPublisher{}
	}
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}
	return publisher, cleanup, nil
}

// provideSubscriber events命令使用的订阅者，订阅全部目录事件
func provideSubscriber(cfg *config.Config, log *zap.Logger) (mq.Subscriber, error) {
	switch cfg.MQ.Driver {
	case config.MQRabbitMQ:
		return mq.NewRabbitConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.Queue, []string{"catalog.#"}, log)
	case config.MQNATS:
		return mq.NewNATSSubscriber(cfg.MQ.URL, cfg.MQ.Subject, log)
	default:
		return nil, fmt.Errorf("mq.driver=%s，没有可订阅的消息中间件", cfg.MQ.Driver)
	}
}

// provideJWTManager 从配置创建JWT管理器
// 教学要点：Wire无法自动知道如何从Config提取参数，所以需要手动编写Provider
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

// provideSessionStore 会话与Token黑名单共用缓存前缀
func provideSessionStore(cfg *config.Config, client goredis.UniversalClient) *redisstore.SessionStore {
	return redisstore.NewSessionStore(client, cfg.Cache.Prefix)
}
