package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookcase/internal/domain/author"
	"github.com/xiebiao/bookcase/internal/domain/category"
	"github.com/xiebiao/bookcase/internal/domain/movable"
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

// movableRepository 单表可排序实体的通用仓储（作者、分类）
// 设计说明:
// 1. E是领域实体（*author.Author），M是GORM模型（AuthorModel）
// 2. 转换函数由具体仓储提供，通用部分只负责SQL
// 3. 删除时通过onDelete清理图书关联表
type movableRepository[E movable.Movable, M any] struct {
	db       *gorm.DB
	name     string
	toModel  func(E) *M
	toEntity func(*M) E
	backfill func(dst E, m *M)

	// onDelete 在同一事务中清理引用（ids为nil表示全部删除）
	onDelete func(tx *gorm.DB, ids []uint) error
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) author.Repository {
	return &movableRepository[*author.Author, AuthorModel]{
		db:       db,
		name:     "作者",
		toModel:  toAuthorModel,
		toEntity: toAuthorEntity,
		backfill: func(dst *author.Author, m *AuthorModel) {
			dst.ID, dst.CreatedAt, dst.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
		},
		onDelete: func(tx *gorm.DB, ids []uint) error {
			return deleteJoinRows(tx, &BookAuthorModel{}, "author_id", ids)
		},
	}
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &movableRepository[*category.Category, CategoryModel]{
		db:       db,
		name:     "分类",
		toModel:  toCategoryModel,
		toEntity: toCategoryEntity,
		backfill: func(dst *category.Category, m *CategoryModel) {
			dst.ID, dst.CreatedAt, dst.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
		},
		onDelete: func(tx *gorm.DB, ids []uint) error {
			return deleteJoinRows(tx, &BookCategoryModel{}, "category_id", ids)
		},
	}
}

// FindAll 按position、id升序返回全部记录
func (r *movableRepository[E, M]) FindAll(ctx context.Context) ([]E, error) {
	var models []M
	if err := getDB(ctx, r.db).Order("position, id").Find(&models).Error; err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询"+r.name+"列表失败")
	}

	data := make([]E, len(models))
	for i := range models {
		data[i] = r.toEntity(&models[i])
	}
	return data, nil
}

// FindByID 根据ID查找，不存在时返回ErrNotFound
func (r *movableRepository[E, M]) FindByID(ctx context.Context, id uint) (E, error) {
	var model M
	var zero E
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, apperrors.ErrNotFound
		}
		return zero, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询"+r.name+"失败")
	}
	return r.toEntity(&model), nil
}

// Save 新记录插入并回填ID，已有记录整行覆盖（保留created_at）
func (r *movableRepository[E, M]) Save(ctx context.Context, data E) error {
	model := r.toModel(data)
	db := getDB(ctx, r.db)

	var err error
	if data.GetID() == 0 {
		err = db.Create(model).Error
	} else {
		err = db.Omit("created_at").Save(model).Error
	}
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "保存"+r.name+"失败")
	}

	r.backfill(data, model)
	return nil
}

// SaveAll 逐条保存（调用方负责开启事务）
func (r *movableRepository[E, M]) SaveAll(ctx context.Context, data []E) error {
	for _, d := range data {
		if err := r.Save(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Delete 删除记录及其图书关联
func (r *movableRepository[E, M]) Delete(ctx context.Context, data E) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := r.onDelete(tx, []uint{data.GetID()}); err != nil {
			return err
		}
		var model M
		if err := tx.Delete(&model, data.GetID()).Error; err != nil {
			return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "删除"+r.name+"失败")
		}
		return nil
	})
}

// DeleteAll 清空表（newData）
func (r *movableRepository[E, M]) DeleteAll(ctx context.Context) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := r.onDelete(tx, nil); err != nil {
			return err
		}
		var model M
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model).Error; err != nil {
			return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "清空"+r.name+"失败")
		}
		return nil
	})
}

// deleteJoinRows 删除关联表中引用ids的行，ids为nil时删除全部
func deleteJoinRows(tx *gorm.DB, model any, column string, ids []uint) error {
	var err error
	if ids == nil {
		err = tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
	} else {
		err = tx.Where(column+" IN ?", ids).Delete(model).Error
	}
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "删除图书关联失败")
	}
	return nil
}
