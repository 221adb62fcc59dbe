package catalog

import (
	"context"

	"github.com/xiebiao/bookcase/internal/domain/author"
	"github.com/xiebiao/bookcase/internal/domain/book"
	"github.com/xiebiao/bookcase/internal/domain/category"
)

// Mapper 外部实体与领域对象的转换
// ToDomain只在校验通过后调用，此时必填字段都不为nil
type Mapper[T any, U any] interface {
	ToEntity(domain U) T
	ToDomain(ctx context.Context, entity T) (U, error)
}

// AuthorMapper 作者转换器
type AuthorMapper struct{}

func (AuthorMapper) ToEntity(a *author.Author) *Author {
	return &Author{
		ID:         idPtr(a.ID),
		FirstName:  ptr(a.FirstName),
		MiddleName: ptr(a.MiddleName),
		LastName:   ptr(a.LastName),
		Position:   ptr(a.Position),
	}
}

func (AuthorMapper) ToDomain(_ context.Context, e *Author) (*author.Author, error) {
	return &author.Author{
		ID:         idValue(e.ID),
		FirstName:  deref(e.FirstName),
		MiddleName: deref(e.MiddleName),
		LastName:   deref(e.LastName),
		Position:   deref(e.Position),
	}, nil
}

// CategoryMapper 分类转换器
type CategoryMapper struct{}

func (CategoryMapper) ToEntity(c *category.Category) *Category {
	return &Category{
		ID:       idPtr(c.ID),
		Name:     ptr(c.Name),
		Position: ptr(c.Position),
	}
}

func (CategoryMapper) ToDomain(_ context.Context, e *Category) (*category.Category, error) {
	return &category.Category{
		ID:       idValue(e.ID),
		Name:     deref(e.Name),
		Position: deref(e.Position),
	}, nil
}

// BookMapper 图书转换器
// 作者、分类按ID从各自的服务解析，保证引用的是已存储的记录
type BookMapper struct {
	authors    *author.Service
	categories *category.Service
}

// NewBookMapper 创建图书转换器
func NewBookMapper(authors *author.Service, categories *category.Service) *BookMapper {
	return &BookMapper{authors: authors, categories: categories}
}

func (m *BookMapper) ToEntity(b *book.Book) *Book {
	e := &Book{
		ID:           idPtr(b.ID),
		CzechName:    ptr(b.CzechName),
		OriginalName: ptr(b.OriginalName),
		ISBN:         ptr(b.ISBN),
		IssueYear:    ptr(b.IssueYear),
		Description:  ptr(b.Description),
		Note:         ptr(b.Note),
		Authors:      make([]*Author, 0, len(b.Authors)),
		Categories:   make([]*Category, 0, len(b.Categories)),
		Position:     ptr(b.Position),
	}
	for _, a := range b.Authors {
		e.Authors = append(e.Authors, AuthorMapper{}.ToEntity(a))
	}
	for _, c := range b.Categories {
		e.Categories = append(e.Categories, CategoryMapper{}.ToEntity(c))
	}
	return e
}

func (m *BookMapper) ToDomain(ctx context.Context, e *Book) (*book.Book, error) {
	b := &book.Book{
		ID:           idValue(e.ID),
		CzechName:    deref(e.CzechName),
		OriginalName: deref(e.OriginalName),
		ISBN:         deref(e.ISBN),
		IssueYear:    deref(e.IssueYear),
		Description:  deref(e.Description),
		Note:         deref(e.Note),
		Position:     deref(e.Position),
	}

	for _, ref := range e.Authors {
		if ref == nil || ref.ID == nil {
			continue
		}
		a, ok, err := m.authors.Get(ctx, *ref.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			b.Authors = append(b.Authors, a)
		}
	}

	for _, ref := range e.Categories {
		if ref == nil || ref.ID == nil {
			continue
		}
		c, ok, err := m.categories.Get(ctx, *ref.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			b.Categories = append(b.Categories, c)
		}
	}

	return b, nil
}

// ItemMapper 版本转换器
type ItemMapper struct{}

func (ItemMapper) ToEntity(i *book.Item) *Item {
	e := &Item{
		ID:        idPtr(i.ID),
		Languages: make([]*book.Language, 0, len(i.Languages)),
		Format:    ptr(i.Format),
		Note:      ptr(i.Note),
		Position:  ptr(i.Position),
	}
	for _, l := range i.Languages {
		e.Languages = append(e.Languages, ptr(l))
	}
	return e
}

func (ItemMapper) ToDomain(_ context.Context, e *Item) (*book.Item, error) {
	i := &book.Item{
		ID:       idValue(e.ID),
		Format:   deref(e.Format),
		Note:     deref(e.Note),
		Position: deref(e.Position),
	}
	for _, l := range e.Languages {
		if l != nil {
			i.Languages = append(i.Languages, *l)
		}
	}
	return i, nil
}

// idPtr 领域ID转外部ID，0表示未持久化
func idPtr(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func idValue(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}

func ptr[V any](v V) *V {
	return &v
}

func deref[V any](p *V) V {
	var zero V
	if p == nil {
		return zero
	}
	return *p
}
