package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/internal/domain/book"
	"github.com/xiebiao/bookcase/internal/domain/movable"
	"github.com/xiebiao/bookcase/pkg/result"
)

const itemEntity = "item"

// ItemFacade 版本门面
// 设计说明：
// 1. 版本属于图书聚合，没有独立的仓储和缓存
// 2. 所有写操作都是"修改父图书 → bookService.Update(父图书)"
// 3. 版本的position只在所属图书内部连续
type ItemFacade struct {
	books         *book.Service
	validator     *ItemValidator
	bookValidator *BookValidator
	mapper        ItemMapper
	notifier      notifier
	logger        *zap.Logger
}

// NewItemFacade 创建版本门面
func NewItemFacade(books *book.Service, validator *ItemValidator, bookValidator *BookValidator, publisher EventPublisher, logger *zap.Logger) *ItemFacade {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("entity", itemEntity))
	return &ItemFacade{
		books:         books,
		validator:     validator,
		bookValidator: bookValidator,
		notifier:      notifier{publisher: publisher, logger: logger},
		logger:        logger,
	}
}

// Get 按ID查找版本，不存在时返回ITEM_NOT_EXIST
func (f *ItemFacade) Get(ctx context.Context, id uint) (entity *Item, r *result.Result, err error) {
	ctx, done := begin(ctx, itemEntity, "get")
	defer func() { done(r, err) }()

	parent, err := findParent(ctx, f.books, id)
	if err != nil {
		return nil, nil, err
	}
	if parent == nil {
		return nil, itemNotExist(), nil
	}
	item, _ := parent.FindItem(id)
	return f.mapper.ToEntity(item), result.New(), nil
}

// Find 返回图书的全部版本（图书EXISTS）
func (f *ItemFacade) Find(ctx context.Context, bookID uint) (entities []*Item, r *result.Result, err error) {
	ctx, done := begin(ctx, itemEntity, "find")
	defer func() { done(r, err) }()

	parent, r, err := f.resolveBook(ctx, bookID)
	if err != nil || !r.OK() {
		return nil, r, err
	}

	items := append([]*book.Item(nil), parent.Items...)
	movable.SortByPosition(items)
	entities = make([]*Item, 0, len(items))
	for _, item := range items {
		entities = append(entities, f.mapper.ToEntity(item))
	}
	return entities, r, nil
}

// Add 为图书新增版本（图书EXISTS，版本NEW + DEEP）
// 版本的position = 图书当前版本数量
func (f *ItemFacade) Add(ctx context.Context, bookID uint, data *Item) (entity *Item, r *result.Result, err error) {
	ctx, done := begin(ctx, itemEntity, OpAdd)
	defer func() { done(r, err) }()

	r, err = f.bookValidator.Validate(ctx, &Book{ID: &bookID}, movable.ValidateExists)
	if err != nil {
		return nil, nil, err
	}
	itemResult, err := f.validator.Validate(ctx, data, movable.ValidateNew, movable.ValidateDeep)
	if err != nil {
		return nil, nil, err
	}
	r.Merge(itemResult)
	if !r.OK() {
		return nil, r, nil
	}

	parent, found, err := f.books.Get(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, bookNotExist(), nil
	}

	item, err := f.mapper.ToDomain(ctx, data)
	if err != nil {
		return nil, nil, err
	}
	parent.AddItem(item)
	if err := f.books.Update(ctx, parent); err != nil {
		return nil, nil, err
	}

	f.afterWrite(ctx, OpAdd, parent.ID, item.ID)
	return f.mapper.ToEntity(item), r, nil
}

// Update 更新版本（EXISTS + DEEP），position保持不变
func (f *ItemFacade) Update(ctx context.Context, data *Item) (entity *Item, r *result.Result, err error) {
	ctx, done := begin(ctx, itemEntity, OpUpdate)
	defer func() { done(r, err) }()

	parent, r, err := f.resolve(ctx, data, movable.ValidateDeep)
	if err != nil || !r.OK() {
		return nil, r, err
	}

	item, err := f.mapper.ToDomain(ctx, data)
	if err != nil {
		return nil, nil, err
	}
	parent.ReplaceItem(item)
	if err := f.books.Update(ctx, parent); err != nil {
		return nil, nil, err
	}

	f.afterWrite(ctx, OpUpdate, parent.ID, item.ID)
	return f.mapper.ToEntity(item), r, nil
}

// Remove 删除版本（EXISTS），剩余版本重排
func (f *ItemFacade) Remove(ctx context.Context, data *Item) (*result.Result, error) {
	return f.write(ctx, data, OpRemove, nil, func(parent *book.Book, id uint) {
		parent.RemoveItem(id)
	})
}

// Duplicate 复制版本（EXISTS），副本追加到所属图书的版本末尾
func (f *ItemFacade) Duplicate(ctx context.Context, data *Item) (*result.Result, error) {
	return f.write(ctx, data, OpDuplicate, nil, func(parent *book.Book, id uint) {
		if item, ok := parent.FindItem(id); ok {
			parent.AddItem(item.Copy())
		}
	})
}

// MoveUp 版本上移（EXISTS + UP）
func (f *ItemFacade) MoveUp(ctx context.Context, data *Item) (*result.Result, error) {
	return f.write(ctx, data, OpMoveUp, []movable.ValidationType{movable.ValidateUp}, func(parent *book.Book, id uint) {
		parent.MoveItem(id, -1)
	})
}

// MoveDown 版本下移（EXISTS + DOWN）
func (f *ItemFacade) MoveDown(ctx context.Context, data *Item) (*result.Result, error) {
	return f.write(ctx, data, OpMoveDown, []movable.ValidationType{movable.ValidateDown}, func(parent *book.Book, id uint) {
		parent.MoveItem(id, 1)
	})
}

// write 校验后修改父图书并保存
func (f *ItemFacade) write(
	ctx context.Context,
	data *Item,
	op string,
	extra []movable.ValidationType,
	change func(parent *book.Book, id uint),
) (r *result.Result, err error) {
	ctx, done := begin(ctx, itemEntity, op)
	defer func() { done(r, err) }()

	parent, r, err := f.resolve(ctx, data, extra...)
	if err != nil || !r.OK() {
		return r, err
	}

	change(parent, *data.ID)
	if err := f.books.Update(ctx, parent); err != nil {
		return nil, err
	}

	f.afterWrite(ctx, op, parent.ID, *data.ID)
	return r, nil
}

// resolve 执行EXISTS（及额外校验）并返回版本所属的图书
func (f *ItemFacade) resolve(ctx context.Context, data *Item, extra ...movable.ValidationType) (*book.Book, *result.Result, error) {
	types := append([]movable.ValidationType{movable.ValidateExists}, extra...)
	r, err := f.validator.Validate(ctx, data, types...)
	if err != nil || !r.OK() {
		return nil, r, err
	}

	parent, err := findParent(ctx, f.books, *data.ID)
	if err != nil {
		return nil, nil, err
	}
	if parent == nil {
		return nil, itemNotExist(), nil
	}
	return parent, r, nil
}

// resolveBook 校验图书存在并返回图书
func (f *ItemFacade) resolveBook(ctx context.Context, bookID uint) (*book.Book, *result.Result, error) {
	r, err := f.bookValidator.Validate(ctx, &Book{ID: &bookID}, movable.ValidateExists)
	if err != nil || !r.OK() {
		return nil, r, err
	}

	parent, found, err := f.books.Get(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, bookNotExist(), nil
	}
	return parent, r, nil
}

func (f *ItemFacade) afterWrite(ctx context.Context, op string, bookID, itemID uint) {
	f.notifier.notify(ctx, Event{Entity: itemEntity, Operation: op, ID: idPtr(itemID), BookID: idPtr(bookID)})
	f.logger.Info("目录操作完成", zap.String("operation", op), zap.Uint("book_id", bookID), zap.Uint("id", itemID))
}

func itemNotExist() *result.Result {
	return result.Error("ITEM_NOT_EXIST", "Item doesn't exist.")
}

func bookNotExist() *result.Result {
	return result.Error("BOOK_NOT_EXIST", "Book doesn't exist.")
}
