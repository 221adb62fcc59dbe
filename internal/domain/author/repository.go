package author

import (
	"github.com/xiebiao/bookcase/internal/domain/movable"
)

// Repository 作者仓储接口
// 由infrastructure/persistence/mysql实现，删除作者时同时清理图书关联
type Repository = movable.Repository[*Author]
