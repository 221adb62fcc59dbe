package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookcase/internal/domain/book"
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 图书是聚合根，Save一次写入books、book_authors、book_categories、items四张表
// 2. 读取时先查图书，再按图书ID批量加载关联（每张表一次查询，避免N+1）
// 3. 版本的自增ID在Save后回填到领域实体
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// FindAll 按position、id升序返回全部图书（含作者、分类、版本）
func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	db := getDB(ctx, r.db)

	var models []BookModel
	if err := db.Order("position, id").Find(&models).Error; err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	if err := r.load(db, books); err != nil {
		return nil, err
	}
	return books, nil
}

// FindByID 根据ID查找图书，不存在时返回ErrNotFound
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	db := getDB(ctx, r.db)

	var model BookModel
	if err := db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询图书失败")
	}

	b := toBookEntity(&model)
	if err := r.load(db, []*book.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// load 批量加载作者、分类、版本
func (r *bookRepository) load(db *gorm.DB, books []*book.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[uint]*book.Book, len(books))
	ids := make([]uint, len(books))
	for i, b := range books {
		byID[b.ID] = b
		ids[i] = b.ID
	}

	var authors []struct {
		AuthorModel
		BookID uint
	}
	err := db.Table("authors").
		Select("authors.*, book_authors.book_id").
		Joins("JOIN book_authors ON book_authors.author_id = authors.id").
		Where("book_authors.book_id IN ?", ids).
		Order("book_authors.book_id, book_authors.position").
		Scan(&authors).Error
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询图书作者失败")
	}
	for i := range authors {
		b := byID[authors[i].BookID]
		b.Authors = append(b.Authors, toAuthorEntity(&authors[i].AuthorModel))
	}

	var categories []struct {
		CategoryModel
		BookID uint
	}
	err = db.Table("categories").
		Select("categories.*, book_categories.book_id").
		Joins("JOIN book_categories ON book_categories.category_id = categories.id").
		Where("book_categories.book_id IN ?", ids).
		Order("book_categories.book_id, book_categories.position").
		Scan(&categories).Error
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询图书分类失败")
	}
	for i := range categories {
		b := byID[categories[i].BookID]
		b.Categories = append(b.Categories, toCategoryEntity(&categories[i].CategoryModel))
	}

	var items []ItemModel
	if err := db.Where("book_id IN ?", ids).Order("book_id, position, id").Find(&items).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询图书版本失败")
	}
	for i := range items {
		b := byID[items[i].BookID]
		b.Items = append(b.Items, toItemEntity(&items[i]))
	}
	return nil
}

// Save 保存图书聚合
// 步骤:
// 1. 写books表（新记录回填ID，已有记录保留created_at）
// 2. 重建作者、分类关联
// 3. 删除已不在Items中的版本，再逐条保存版本并回填ID
func (r *bookRepository) Save(ctx context.Context, b *book.Book) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		model := toBookModel(b)
		var err error
		if b.ID == 0 {
			err = tx.Create(model).Error
		} else {
			err = tx.Omit("created_at").Save(model).Error
		}
		if err != nil {
			return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "保存图书失败")
		}
		b.ID, b.CreatedAt, b.UpdatedAt = model.ID, model.CreatedAt, model.UpdatedAt

		if err := r.saveAuthors(tx, b); err != nil {
			return err
		}
		if err := r.saveCategories(tx, b); err != nil {
			return err
		}
		return r.saveItems(tx, b)
	})
}

func (r *bookRepository) saveAuthors(tx *gorm.DB, b *book.Book) error {
	if err := tx.Where("book_id = ?", b.ID).Delete(&BookAuthorModel{}).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新图书作者失败")
	}
	if len(b.Authors) == 0 {
		return nil
	}

	rows := make([]BookAuthorModel, len(b.Authors))
	for i, a := range b.Authors {
		rows[i] = BookAuthorModel{BookID: b.ID, AuthorID: a.ID, Position: i}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新图书作者失败")
	}
	return nil
}

func (r *bookRepository) saveCategories(tx *gorm.DB, b *book.Book) error {
	if err := tx.Where("book_id = ?", b.ID).Delete(&BookCategoryModel{}).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新图书分类失败")
	}
	if len(b.Categories) == 0 {
		return nil
	}

	rows := make([]BookCategoryModel, len(b.Categories))
	for i, c := range b.Categories {
		rows[i] = BookCategoryModel{BookID: b.ID, CategoryID: c.ID, Position: i}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新图书分类失败")
	}
	return nil
}

func (r *bookRepository) saveItems(tx *gorm.DB, b *book.Book) error {
	kept := collectIDs(b.Items, func(i *book.Item) uint { return i.ID })

	orphans := tx.Where("book_id = ?", b.ID)
	if len(kept) > 0 {
		orphans = orphans.Where("id NOT IN ?", kept)
	}
	if err := orphans.Delete(&ItemModel{}).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "删除图书版本失败")
	}

	for _, item := range b.Items {
		model := toItemModel(b.ID, item)
		var err error
		if item.ID == 0 {
			err = tx.Create(model).Error
		} else {
			err = tx.Omit("created_at").Save(model).Error
		}
		if err != nil {
			return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "保存图书版本失败")
		}
		item.ID, item.CreatedAt, item.UpdatedAt = model.ID, model.CreatedAt, model.UpdatedAt
	}
	return nil
}

// SaveAll 逐条保存（调用方负责开启事务）
func (r *bookRepository) SaveAll(ctx context.Context, books []*book.Book) error {
	for _, b := range books {
		if err := r.Save(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// Delete 删除图书及其版本、关联
func (r *bookRepository) Delete(ctx context.Context, b *book.Book) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&ItemModel{}, &BookAuthorModel{}, &BookCategoryModel{}} {
			if err := tx.Where("book_id = ?", b.ID).Delete(model).Error; err != nil {
				return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "删除图书失败")
			}
		}
		if err := tx.Delete(&BookModel{}, b.ID).Error; err != nil {
			return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "删除图书失败")
		}
		return nil
	})
}

// DeleteAll 清空图书相关的全部表（newData）
func (r *bookRepository) DeleteAll(ctx context.Context) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&ItemModel{}, &BookAuthorModel{}, &BookCategoryModel{}, &BookModel{}} {
			if err := all.Delete(model).Error; err != nil {
				return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "清空图书失败")
			}
		}
		return nil
	})
}
