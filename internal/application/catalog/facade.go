package catalog

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcase/internal/domain/author"
	"github.com/xiebiao/bookcase/internal/domain/book"
	"github.com/xiebiao/bookcase/internal/domain/category"
	"github.com/xiebiao/bookcase/internal/domain/movable"
	"github.com/xiebiao/bookcase/pkg/metrics"
	"github.com/xiebiao/bookcase/pkg/result"
	"github.com/xiebiao/bookcase/pkg/tracing"
)

const tracerName = "catalog"

// Validator 校验端口（*movable.Validator和*BookValidator都满足）
type Validator[T movable.Data] interface {
	Name() string
	Validate(ctx context.Context, data T, types ...movable.ValidationType) (*result.Result, error)
}

// invalidator 内容依赖于本集合的其他集合（作者、分类被图书引用）
type invalidator interface {
	Invalidate(ctx context.Context)
}

// Facade 目录门面（作者、分类、图书共用）
// 设计说明：
// 1. 门面是应用层入口：先校验，校验通过才映射为领域对象并调用领域服务
// 2. 校验失败不是error，返回的Result带有事件，HTTP层据此决定状态码
// 3. error只表示基础设施故障（数据库、缓存回源失败等）
// 4. 写操作提交后：删除依赖集合的缓存 → 发布事件 → 记录日志
type Facade[T movable.Data, U movable.Entity[U]] struct {
	entity     string // 小写实体名，用于事件和指标，如"author"
	name       string // 如"Author"
	prefix     string // 如"AUTHOR"
	service    *movable.Service[U]
	validator  Validator[T]
	mapper     Mapper[T, U]
	keep       func(stored, updated U) // Update时从已存储记录保留的字段
	dependents []invalidator
	notifier   notifier
	logger     *zap.Logger
}

func newFacade[T movable.Data, U movable.Entity[U]](
	service *movable.Service[U],
	validator Validator[T],
	mapper Mapper[T, U],
	publisher EventPublisher,
	logger *zap.Logger,
) *Facade[T, U] {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := validator.Name()
	entity := strings.ToLower(name)
	logger = logger.With(zap.String("entity", entity))
	return &Facade[T, U]{
		entity:    entity,
		name:      name,
		prefix:    strings.ToUpper(name),
		service:   service,
		validator: validator,
		mapper:    mapper,
		notifier:  notifier{publisher: publisher, logger: logger},
		logger:    logger,
	}
}

// AuthorFacade 作者门面
type AuthorFacade = Facade[*Author, *author.Author]

// NewAuthorFacade 创建作者门面
// 作者变更后删除图书列表缓存（图书列表中内嵌作者）
func NewAuthorFacade(service *author.Service, validator *AuthorValidator, books *book.Service, publisher EventPublisher, logger *zap.Logger) *AuthorFacade {
	f := newFacade[*Author, *author.Author](service, validator, AuthorMapper{}, publisher, logger)
	f.dependents = append(f.dependents, books)
	return f
}

// CategoryFacade 分类门面
type CategoryFacade = Facade[*Category, *category.Category]

// NewCategoryFacade 创建分类门面
func NewCategoryFacade(service *category.Service, validator *CategoryValidator, books *book.Service, publisher EventPublisher, logger *zap.Logger) *CategoryFacade {
	f := newFacade[*Category, *category.Category](service, validator, CategoryMapper{}, publisher, logger)
	f.dependents = append(f.dependents, books)
	return f
}

// BookFacade 图书门面
type BookFacade = Facade[*Book, *book.Book]

// NewBookFacade 创建图书门面
// 外部图书实体不包含版本，Update时保留已存储的版本
func NewBookFacade(service *book.Service, validator *BookValidator, mapper *BookMapper, publisher EventPublisher, logger *zap.Logger) *BookFacade {
	f := newFacade[*Book, *book.Book](service, validator, mapper, publisher, logger)
	f.keep = func(stored, updated *book.Book) {
		updated.Items = stored.Items
	}
	return f
}

// Name 实体名称
func (f *Facade[T, U]) Name() string {
	return f.name
}

// NewData 删除全部数据
func (f *Facade[T, U]) NewData(ctx context.Context) (err error) {
	ctx, done := begin(ctx, f.entity, OpNewData)
	defer func() { done(nil, err) }()

	if err := f.service.NewData(ctx); err != nil {
		return err
	}
	f.afterWrite(ctx, OpNewData, 0)
	return nil
}

// GetAll 返回按position排序的完整列表
func (f *Facade[T, U]) GetAll(ctx context.Context) (_ []T, err error) {
	ctx, done := begin(ctx, f.entity, "getAll")
	defer func() { done(nil, err) }()

	data, err := f.service.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]T, 0, len(data))
	for _, d := range data {
		entities = append(entities, f.mapper.ToEntity(d))
	}
	return entities, nil
}

// Get 按ID查找，不存在时返回{NAME}_NOT_EXIST
func (f *Facade[T, U]) Get(ctx context.Context, id uint) (entity T, r *result.Result, err error) {
	ctx, done := begin(ctx, f.entity, "get")
	defer func() { done(r, err) }()

	d, found, err := f.service.Get(ctx, id)
	if err != nil {
		return entity, nil, err
	}
	if !found {
		return entity, f.notExist(), nil
	}
	return f.mapper.ToEntity(d), result.New(), nil
}

// Add 新增（NEW + DEEP），返回带ID和position的实体
func (f *Facade[T, U]) Add(ctx context.Context, data T) (entity T, r *result.Result, err error) {
	ctx, done := begin(ctx, f.entity, OpAdd)
	defer func() { done(r, err) }()

	r, err = f.validator.Validate(ctx, data, movable.ValidateNew, movable.ValidateDeep)
	if err != nil || !r.OK() {
		return entity, r, err
	}

	d, err := f.mapper.ToDomain(ctx, data)
	if err != nil {
		return entity, nil, err
	}
	if err := f.service.Add(ctx, d); err != nil {
		return entity, nil, err
	}

	f.afterWrite(ctx, OpAdd, d.GetID())
	return f.mapper.ToEntity(d), r, nil
}

// Update 整体更新（EXISTS + DEEP）
// position以已存储的为准，调整顺序只能通过moveUp/moveDown
func (f *Facade[T, U]) Update(ctx context.Context, data T) (entity T, r *result.Result, err error) {
	ctx, done := begin(ctx, f.entity, OpUpdate)
	defer func() { done(r, err) }()

	r, err = f.validator.Validate(ctx, data, movable.ValidateExists, movable.ValidateDeep)
	if err != nil || !r.OK() {
		return entity, r, err
	}

	stored, found, err := f.service.Get(ctx, *data.Identifier())
	if err != nil {
		return entity, nil, err
	}
	if !found {
		return entity, f.notExist(), nil
	}

	d, err := f.mapper.ToDomain(ctx, data)
	if err != nil {
		return entity, nil, err
	}
	d.SetPosition(stored.GetPosition())
	if f.keep != nil {
		f.keep(stored, d)
	}

	if err := f.service.Update(ctx, d); err != nil {
		return entity, nil, err
	}

	f.afterWrite(ctx, OpUpdate, d.GetID())
	return f.mapper.ToEntity(d), r, nil
}

// Remove 删除（EXISTS），随后重排剩余记录的position
func (f *Facade[T, U]) Remove(ctx context.Context, data T) (r *result.Result, err error) {
	ctx, done := begin(ctx, f.entity, OpRemove)
	defer func() { done(r, err) }()

	stored, r, err := f.resolve(ctx, data)
	if err != nil || !r.OK() {
		return r, err
	}

	if err := f.service.Remove(ctx, stored); err != nil {
		return nil, err
	}
	if err := f.service.UpdatePositions(ctx); err != nil {
		return nil, err
	}

	f.afterWrite(ctx, OpRemove, stored.GetID())
	return r, nil
}

// Duplicate 复制（EXISTS），副本追加到列表末尾
func (f *Facade[T, U]) Duplicate(ctx context.Context, data T) (r *result.Result, err error) {
	ctx, done := begin(ctx, f.entity, OpDuplicate)
	defer func() { done(r, err) }()

	stored, r, err := f.resolve(ctx, data)
	if err != nil || !r.OK() {
		return r, err
	}

	if err := f.service.Duplicate(ctx, stored); err != nil {
		return nil, err
	}

	f.afterWrite(ctx, OpDuplicate, stored.GetID())
	return r, nil
}

// MoveUp 上移（EXISTS + UP）
func (f *Facade[T, U]) MoveUp(ctx context.Context, data T) (*result.Result, error) {
	return f.move(ctx, data, OpMoveUp, movable.ValidateUp, f.service.MoveUp)
}

// MoveDown 下移（EXISTS + DOWN）
func (f *Facade[T, U]) MoveDown(ctx context.Context, data T) (*result.Result, error) {
	return f.move(ctx, data, OpMoveDown, movable.ValidateDown, f.service.MoveDown)
}

func (f *Facade[T, U]) move(
	ctx context.Context,
	data T,
	op string,
	direction movable.ValidationType,
	apply func(context.Context, U) error,
) (r *result.Result, err error) {
	ctx, done := begin(ctx, f.entity, op)
	defer func() { done(r, err) }()

	stored, r, err := f.resolve(ctx, data, direction)
	if err != nil || !r.OK() {
		return r, err
	}

	if err := apply(ctx, stored); err != nil {
		return nil, err
	}

	f.afterWrite(ctx, op, stored.GetID())
	return r, nil
}

// UpdatePositions 把position重写为0..N-1
func (f *Facade[T, U]) UpdatePositions(ctx context.Context) (err error) {
	ctx, done := begin(ctx, f.entity, OpUpdatePositions)
	defer func() { done(nil, err) }()

	if err := f.service.UpdatePositions(ctx); err != nil {
		return err
	}
	f.afterWrite(ctx, OpUpdatePositions, 0)
	return nil
}

// resolve 执行EXISTS（及额外的校验类型）并取出已存储的记录
func (f *Facade[T, U]) resolve(ctx context.Context, data T, extra ...movable.ValidationType) (stored U, r *result.Result, err error) {
	types := append([]movable.ValidationType{movable.ValidateExists}, extra...)
	r, err = f.validator.Validate(ctx, data, types...)
	if err != nil || !r.OK() {
		return stored, r, err
	}

	stored, found, err := f.service.Get(ctx, *data.Identifier())
	if err != nil {
		return stored, nil, err
	}
	if !found {
		return stored, f.notExist(), nil
	}
	return stored, r, nil
}

func (f *Facade[T, U]) notExist() *result.Result {
	return result.Error(f.prefix+"_NOT_EXIST", f.name+" doesn't exist.")
}

func (f *Facade[T, U]) afterWrite(ctx context.Context, op string, id uint) {
	for _, d := range f.dependents {
		d.Invalidate(ctx)
	}
	f.notifier.notify(ctx, Event{Entity: f.entity, Operation: op, ID: idPtr(id)})
	f.logger.Info("目录操作完成", zap.String("operation", op), zap.Uint("id", id))
}

// begin 为一次门面操作开启Span并在结束时记录指标
func begin(ctx context.Context, entity, op string) (context.Context, func(r *result.Result, err error)) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "catalog."+entity+"."+op)

	return ctx, func(r *result.Result, err error) {
		ok := r == nil || r.OK()
		if !ok {
			span.SetAttributes(attribute.StringSlice("catalog.result.keys", r.Keys()))
		}
		tracing.End(span, err)
		metrics.ObserveCatalogOperation(entity, op, metrics.StatusOf(ok, err), time.Since(start))
	}
}
