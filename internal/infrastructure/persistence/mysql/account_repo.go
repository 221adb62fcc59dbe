package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookcase/internal/domain/account"
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

// accountRepository 账号仓储实现（MySQL）
// 设计说明：
// 1. 用户名唯一性由数据库UNIQUE索引保证（而非应用层SELECT再INSERT）
// 2. 捕获Duplicate Entry错误，转换为业务错误ErrUsernameDuplicate
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账号仓储
// 注意：返回的是domain层的接口类型（依赖倒置）
func NewAccountRepository(db *gorm.DB) account.Repository {
	return &accountRepository{db: db}
}

// Create 创建账号并回填ID
func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	model := toAccountModel(a)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrUsernameDuplicate
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "创建账号失败")
	}

	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByUsername 根据用户名查找账号
func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	var model AccountModel
	err := getDB(ctx, r.db).Where("username = ?", username).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询账号失败")
	}
	return toAccountEntity(&model), nil
}

// Count 账号总数
func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := getDB(ctx, r.db).Model(&AccountModel{}).Count(&count).Error; err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "统计账号失败")
	}
	return count, nil
}
