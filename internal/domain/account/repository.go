package account

import (
	"context"
)

// Repository 账号仓储接口
type Repository interface {
	// Create 创建账号，用户名重复时返回ErrUsernameDuplicate
	Create(ctx context.Context, account *Account) error

	// FindByUsername 不存在时返回ErrAccountNotFound
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// Count 账号总数（第一个注册的账号授予管理员角色）
	Count(ctx context.Context) (int64, error)
}
