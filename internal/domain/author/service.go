package author

import (
	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/internal/domain/movable"
)

// CacheKey 作者列表缓存key
const CacheKey = "authors"

// Service 作者领域服务
type Service = movable.Service[*Author]

// NewService 创建作者领域服务
func NewService(repo Repository, cache movable.Cache, tx movable.Transactor, logger *zap.Logger) *Service {
	return movable.NewService[*Author](repo, cache, tx, CacheKey, logger)
}
