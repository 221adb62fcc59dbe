package category

import (
	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/internal/domain/movable"
)

// CacheKey 分类列表缓存key
const CacheKey = "categories"

// Repository 分类仓储接口
type Repository = movable.Repository[*Category]

// Service 分类领域服务
type Service = movable.Service[*Category]

// NewService 创建分类领域服务
func NewService(repo Repository, cache movable.Cache, tx movable.Transactor, logger *zap.Logger) *Service {
	return movable.NewService[*Category](repo, cache, tx, CacheKey, logger)
}
