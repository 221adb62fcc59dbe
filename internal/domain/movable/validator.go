package movable

import (
	"context"
	"strings"

	"github.com/xiebiao/bookcase/pkg/result"
)

// ValidationType 校验类型，可任意组合
type ValidationType int

const (
	// ValidateNew ID必须为空
	ValidateNew ValidationType = iota + 1
	// ValidateExists ID不能为空且记录必须存在
	ValidateExists
	// ValidateDeep 字段级校验（由具体实体提供）
	ValidateDeep
	// ValidateUp 可以上移
	ValidateUp
	// ValidateDown 可以下移
	ValidateDown
)

func (t ValidationType) String() string {
	switch t {
	case ValidateNew:
		return "NEW"
	case ValidateExists:
		return "EXISTS"
	case ValidateDeep:
		return "DEEP"
	case ValidateUp:
		return "UP"
	case ValidateDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// Data 外部实体（API边界上的可空表示）
type Data interface {
	// Identifier 返回ID，nil表示新数据
	Identifier() *uint
}

// Reader 只读服务接口（Service[T]实现）
type Reader[U Movable] interface {
	GetAll(ctx context.Context) ([]U, error)
	Get(ctx context.Context, id uint) (U, bool, error)
}

// Lookup 定位外部数据对应的领域对象，以及它所在的有序列表
// 普通实体直接查自己的Service；Item需要扫描所有Book的items
type Lookup[T Data, U Movable] interface {
	Find(ctx context.Context, data T) (U, bool, error)
	List(ctx context.Context, data T) ([]U, error)
}

// ServiceLookup 基于Reader的默认Lookup
type ServiceLookup[T Data, U Movable] struct {
	reader Reader[U]
}

// NewServiceLookup 创建默认Lookup
func NewServiceLookup[T Data, U Movable](reader Reader[U]) ServiceLookup[T, U] {
	return ServiceLookup[T, U]{reader: reader}
}

func (l ServiceLookup[T, U]) Find(ctx context.Context, data T) (U, bool, error) {
	return l.reader.Get(ctx, *data.Identifier())
}

func (l ServiceLookup[T, U]) List(ctx context.Context, data T) ([]U, error) {
	return l.reader.GetAll(ctx)
}

// DeepFunc 字段级校验，事件直接追加到r
type DeepFunc[T Data] func(ctx context.Context, data T, r *result.Result) error

// Validator 通用校验器
// 设计说明：
// 1. 所有选中的校验都会执行，事件汇总到同一个Result（不短路）
// 2. 执行顺序固定：NEW → EXISTS → DEEP → UP → DOWN，与参数顺序无关
// 3. UP/DOWN在ID为空或记录不存在时整体跳过，避免与NOT_EXIST重复报错
// 4. 业务校验失败只产生事件，error只表示基础设施故障
type Validator[T Data, U Movable] struct {
	name   string // 如"Author"，用于消息
	prefix string // 如"AUTHOR"，用于key
	lookup Lookup[T, U]
	deep   DeepFunc[T]
}

// NewValidator 创建通用校验器
func NewValidator[T Data, U Movable](name string, lookup Lookup[T, U], deep DeepFunc[T]) *Validator[T, U] {
	return &Validator[T, U]{
		name:   name,
		prefix: strings.ToUpper(name),
		lookup: lookup,
		deep:   deep,
	}
}

// Name 实体名称
func (v *Validator[T, U]) Name() string {
	return v.name
}

// Validate 按指定类型校验数据
func (v *Validator[T, U]) Validate(ctx context.Context, data T, types ...ValidationType) (*result.Result, error) {
	selected := make(map[ValidationType]bool, len(types))
	for _, t := range types {
		selected[t] = true
	}

	r := result.New()

	if selected[ValidateNew] && data.Identifier() != nil {
		r.AddError(v.prefix+"_ID_NOT_NULL", "ID must be null.")
	}

	if selected[ValidateExists] {
		if err := v.validateExists(ctx, data, r); err != nil {
			return nil, err
		}
	}

	if selected[ValidateDeep] && v.deep != nil {
		if err := v.deep(ctx, data, r); err != nil {
			return nil, err
		}
	}

	if selected[ValidateUp] {
		if err := v.validateMove(ctx, data, true, r); err != nil {
			return nil, err
		}
	}

	if selected[ValidateDown] {
		if err := v.validateMove(ctx, data, false, r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (v *Validator[T, U]) validateExists(ctx context.Context, data T, r *result.Result) error {
	if data.Identifier() == nil {
		r.AddError(v.prefix+"_ID_NULL", "ID mustn't be null.")
		return nil
	}

	_, found, err := v.lookup.Find(ctx, data)
	if err != nil {
		return err
	}
	if !found {
		r.AddError(v.prefix+"_NOT_EXIST", v.name+" doesn't exist.")
	}
	return nil
}

func (v *Validator[T, U]) validateMove(ctx context.Context, data T, up bool, r *result.Result) error {
	if data.Identifier() == nil {
		return nil
	}

	domain, found, err := v.lookup.Find(ctx, data)
	if err != nil || !found {
		return err
	}

	list, err := v.lookup.List(ctx, data)
	if err != nil {
		return err
	}
	sorted := append([]U(nil), list...)
	SortByPosition(sorted)
	index := IndexOf(sorted, domain.GetID())

	if up && index <= 0 {
		r.AddError(v.prefix+"_NOT_MOVABLE", v.name+" can't be moved up.")
	}
	if !up && (index < 0 || index >= len(sorted)-1) {
		r.AddError(v.prefix+"_NOT_MOVABLE", v.name+" can't be moved down.")
	}
	return nil
}
