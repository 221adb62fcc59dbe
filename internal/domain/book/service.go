package book

import (
	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/internal/domain/movable"
)

// CacheKey 图书列表缓存key
const CacheKey = "books"

// Repository 图书仓储接口
// 说明：Save同时写入作者/分类关联表和版本表（删除已移除的版本）
type Repository = movable.Repository[*Book]

// Service 图书领域服务
// 版本的增删改移都通过Update父图书完成
type Service = movable.Service[*Book]

// NewService 创建图书领域服务
func NewService(repo Repository, cache movable.Cache, tx movable.Transactor, logger *zap.Logger) *Service {
	return movable.NewService[*Book](repo, cache, tx, CacheKey, logger)
}
