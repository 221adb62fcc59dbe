// Package movable 可排序实体框架
//
// 作者、分类、图书、版本（Item）四类实体都是"有序列表"：
// 每条记录都有自增ID和整数position，同一集合内position始终为0..N-1。
// 本包提供与具体实体无关的通用部分：
//   - Service[T]: 读穿缓存 + 新增/更新/删除/复制/上移/下移/重排
//   - Validator[T, U]: NEW/EXISTS/DEEP/UP/DOWN 组合校验
//
// 分工：Validator决定"能不能做"，Service只负责"去做"，
// Service内部不做业务校验。
package movable

import (
	"context"
	"slices"
)

// Movable 可排序实体
// 说明：ID为0表示尚未持久化
type Movable interface {
	GetID() uint
	GetPosition() int
	SetPosition(position int)
}

// Entity 支持深拷贝的可排序实体（T通常是指针类型，如*author.Author）
// Copy返回的副本ID必须清零，用于duplicate
type Entity[T any] interface {
	Movable
	Copy() T
}

// Parent 拥有子集合的实体（如Book拥有Items）
// UpdatePositions重排父实体时会一并重排子集合
type Parent interface {
	UpdateChildPositions()
}

// Repository 持久化端口
// 由infrastructure层实现（GORM），FindAll按position、id升序返回
type Repository[T Movable] interface {
	FindAll(ctx context.Context) ([]T, error)

	// FindByID 记录不存在时返回apperrors.ErrNotFound
	FindByID(ctx context.Context, id uint) (T, error)

	// Save 新记录（ID为0）插入并回填ID，否则整行覆盖
	Save(ctx context.Context, data T) error

	SaveAll(ctx context.Context, data []T) error

	Delete(ctx context.Context, data T) error

	DeleteAll(ctx context.Context) error
}

// Cache 列表缓存端口
// 每类实体使用一个固定key缓存完整有序列表，任何写操作后整体替换
type Cache interface {
	// Get 命中时将列表解码到dest并返回true
	Get(ctx context.Context, key string, dest any) (bool, error)

	Put(ctx context.Context, key string, value any) error

	// Evict 删除单个key（刷新失败时兜底）
	Evict(ctx context.Context, key string) error

	// Clear 清空全部缓存
	Clear(ctx context.Context) error
}

// Transactor 事务端口（mysql.TxManager实现）
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTransactor 不开启事务，直接执行fn
// 用于没有数据库的场景（单元测试、内存仓储）
type NopTransactor struct{}

func (NopTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SortByPosition 按position、id升序稳定排序
func SortByPosition[T Movable](data []T) {
	slices.SortStableFunc(data, func(a, b T) int {
		if a.GetPosition() != b.GetPosition() {
			return a.GetPosition() - b.GetPosition()
		}
		return int(a.GetID()) - int(b.GetID())
	})
}

// IndexOf 返回ID在列表中的下标，不存在返回-1
func IndexOf[T Movable](data []T, id uint) int {
	return slices.IndexFunc(data, func(item T) bool {
		return item.GetID() == id
	})
}

// Renumber 将position改写为列表下标
func Renumber[T Movable](data []T) {
	for i, item := range data {
		item.SetPosition(i)
	}
}
