package catalog

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookcase/internal/domain/author"
	"github.com/xiebiao/bookcase/internal/domain/book"
	"github.com/xiebiao/bookcase/internal/domain/category"
	"github.com/xiebiao/bookcase/internal/domain/movable"
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

// memRepository 以JSON保存每一行的内存仓储，读写都是深拷贝
type memRepository[U movable.Movable] struct {
	mu     sync.Mutex
	rows   map[uint][]byte
	nextID uint
	assign func(data U, next func() uint)
}

func newMemRepository[U movable.Movable](assign func(data U, next func() uint)) *memRepository[U] {
	return &memRepository[U]{rows: map[uint][]byte{}, nextID: 1, assign: assign}
}

func (m *memRepository[U]) next() uint {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memRepository[U]) FindAll(ctx context.Context) ([]U, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uint, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	data := make([]U, 0, len(ids))
	for _, id := range ids {
		var v U
		if err := json.Unmarshal(m.rows[id], &v); err != nil {
			return nil, err
		}
		data = append(data, v)
	}
	movable.SortByPosition(data)
	return data, nil
}

func (m *memRepository[U]) FindByID(ctx context.Context, id uint) (U, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var v U
	body, ok := m.rows[id]
	if !ok {
		return v, apperrors.ErrNotFound
	}
	err := json.Unmarshal(body, &v)
	return v, err
}

func (m *memRepository[U]) Save(ctx context.Context, data U) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assign(data, m.next)
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.rows[data.GetID()] = body
	return nil
}

func (m *memRepository[U]) SaveAll(ctx context.Context, data []U) error {
	for _, d := range data {
		if err := m.Save(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (m *memRepository[U]) Delete(ctx context.Context, data U) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, data.GetID())
	return nil
}

func (m *memRepository[U]) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = map[uint][]byte{}
	return nil
}

// mapCache 以JSON字节保存列表
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(body, dest)
}

func (c *mapCache) Put(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = body
	return nil
}

func (c *mapCache) Evict(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *mapCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	return nil
}

// recordingPublisher 记录发布的routing key
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// fixture 组装完整的目录应用层（内存仓储 + 共享缓存）
type fixture struct {
	authors    *AuthorFacade
	categories *CategoryFacade
	books      *BookFacade
	items      *ItemFacade

	authorValidator   *AuthorValidator
	categoryValidator *CategoryValidator
	bookValidator     *BookValidator
	itemValidator     *ItemValidator

	bookService *book.Service
	bookRepo    *memRepository[*book.Book]
	publisher   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cache := newMapCache()
	tx := movable.NopTransactor{}

	authorRepo := newMemRepository(func(a *author.Author, next func() uint) {
		if a.ID == 0 {
			a.ID = next()
		}
	})
	categoryRepo := newMemRepository(func(c *category.Category, next func() uint) {
		if c.ID == 0 {
			c.ID = next()
		}
	})
	// 图书与版本共用一个ID序列，模拟两张表各自自增的效果即可
	bookRepo := newMemRepository(func(b *book.Book, next func() uint) {
		if b.ID == 0 {
			b.ID = next()
		}
		for _, item := range b.Items {
			if item.ID == 0 {
				item.ID = next() + 1000
			}
		}
	})

	authorService := author.NewService(authorRepo, cache, tx, nil)
	categoryService := category.NewService(categoryRepo, cache, tx, nil)
	bookService := book.NewService(bookRepo, cache, tx, nil)

	f := &fixture{
		authorValidator:   NewAuthorValidator(authorService),
		categoryValidator: NewCategoryValidator(categoryService),
		bookService:       bookService,
		bookRepo:          bookRepo,
		publisher:         &recordingPublisher{},
	}
	f.bookValidator = NewBookValidator(bookService, f.authorValidator, f.categoryValidator)
	f.itemValidator = NewItemValidator(bookService)

	f.authors = NewAuthorFacade(authorService, f.authorValidator, bookService, f.publisher, nil)
	f.categories = NewCategoryFacade(categoryService, f.categoryValidator, bookService, f.publisher, nil)
	f.books = NewBookFacade(bookService, f.bookValidator, NewBookMapper(authorService, categoryService), f.publisher, nil)
	f.items = NewItemFacade(bookService, f.itemValidator, f.bookValidator, f.publisher, nil)
	return f
}

func (f *fixture) addAuthor(t *testing.T, first, last string) *Author {
	t.Helper()
	a, r, err := f.authors.Add(context.Background(), newAuthor(first, last))
	require.NoError(t, err)
	require.True(t, r.OK(), r.Keys())
	return a
}

func (f *fixture) addCategory(t *testing.T, name string) *Category {
	t.Helper()
	c, r, err := f.categories.Add(context.Background(), &Category{Name: strPtr(name)})
	require.NoError(t, err)
	require.True(t, r.OK(), r.Keys())
	return c
}

func (f *fixture) addBook(t *testing.T, name string, a *Author, c *Category) *Book {
	t.Helper()
	b, r, err := f.books.Add(context.Background(), newBook(name, a, c))
	require.NoError(t, err)
	require.True(t, r.OK(), r.Keys())
	return b
}

func (f *fixture) addItem(t *testing.T, bookID uint, format book.Format) *Item {
	t.Helper()
	i, r, err := f.items.Add(context.Background(), bookID, newItem(format))
	require.NoError(t, err)
	require.True(t, r.OK(), r.Keys())
	return i
}

func newAuthor(first, last string) *Author {
	return &Author{FirstName: strPtr(first), MiddleName: strPtr(""), LastName: strPtr(last)}
}

func newBook(name string, a *Author, c *Category) *Book {
	b := &Book{
		CzechName:    strPtr(name),
		OriginalName: strPtr(name),
		ISBN:         strPtr(""),
		IssueYear:    intPtr(2001),
		Description:  strPtr("popis"),
		Note:         strPtr(""),
		Authors:      []*Author{},
		Categories:   []*Category{},
	}
	if a != nil {
		b.Authors = append(b.Authors, a)
	}
	if c != nil {
		b.Categories = append(b.Categories, c)
	}
	return b
}

func newItem(format book.Format) *Item {
	cz := book.LanguageCZ
	return &Item{Languages: []*book.Language{&cz}, Format: &format, Note: strPtr("")}
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }
