package movable

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Service 可排序实体的通用领域服务
// 设计说明：
// 1. 读操作走缓存（cache-first），未命中时从仓储加载并整体写入缓存
// 2. 写操作先写数据库，提交后再刷新缓存，顺序不能颠倒
// 3. 缓存故障只记日志，不影响已提交的写操作
// 4. 每个实例持有一把互斥锁，串行化同类实体的写操作
//
// 已知限制：读操作不加锁，并发请求可能读到写入前的旧列表；
// 单用户书架场景下可以接受。
type Service[T Entity[T]] struct {
	repo   Repository[T]
	cache  Cache
	tx     Transactor
	key    string // 缓存key，如"authors"
	logger *zap.Logger
	mu     sync.Mutex
}

// NewService 创建通用服务
func NewService[T Entity[T]](repo Repository[T], cache Cache, tx Transactor, key string, logger *zap.Logger) *Service[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service[T]{
		repo:   repo,
		cache:  cache,
		tx:     tx,
		key:    key,
		logger: logger.With(zap.String("collection", key)),
	}
}

// Key 返回缓存key
func (s *Service[T]) Key() string {
	return s.key
}

// NewData 删除全部数据并清空缓存（不可恢复）
func (s *Service[T]) NewData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}

	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("清空缓存失败", zap.Error(err))
	}
	return nil
}

// GetAll 返回完整有序列表（cache-first）
// 注意：返回的列表不保证是防御性副本，调用方不要依赖这一点
func (s *Service[T]) GetAll(ctx context.Context) ([]T, error) {
	var cached []T
	hit, err := s.cache.Get(ctx, s.key, &cached)
	if err != nil {
		s.logger.Warn("读取缓存失败，回退到数据库", zap.Error(err))
	}
	if hit && err == nil {
		return cached, nil
	}
	return s.load(ctx)
}

// Get 按ID查找（线性扫描）
// 集合规模为几十到几百条，O(N)可以接受
func (s *Service[T]) Get(ctx context.Context, id uint) (T, bool, error) {
	var zero T
	data, err := s.GetAll(ctx)
	if err != nil {
		return zero, false, err
	}

	if i := IndexOf(data, id); i >= 0 {
		return data[i], true, nil
	}
	return zero, false, nil
}

// Add 新增记录，position = 当前数量
// 调用后data上可以读到数据库分配的ID
func (s *Service[T]) Add(ctx context.Context, data T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	data.SetPosition(len(list))
	if err := s.repo.Save(ctx, data); err != nil {
		return err
	}

	s.refresh(ctx)
	return nil
}

// Update 整行覆盖更新
func (s *Service[T]) Update(ctx context.Context, data T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, data); err != nil {
		return err
	}

	s.refresh(ctx)
	return nil
}

// Remove 删除记录，不重排剩余记录的position
// 重排由调用方显式调用UpdatePositions完成
func (s *Service[T]) Remove(ctx context.Context, data T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, data); err != nil {
		return err
	}

	s.refresh(ctx)
	return nil
}

// Duplicate 复制记录并追加到列表末尾
// 源记录不存在时静默返回（调用方必须先通过EXISTS校验）
func (s *Service[T]) Duplicate(ctx context.Context, data T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.GetAll(ctx)
	if err != nil {
		return err
	}

	i := IndexOf(list, data.GetID())
	if i < 0 {
		return nil
	}

	duplicate := list[i].Copy()
	duplicate.SetPosition(len(list))
	if err := s.repo.Save(ctx, duplicate); err != nil {
		return err
	}

	s.refresh(ctx)
	return nil
}

// MoveUp 与前一条记录交换position
func (s *Service[T]) MoveUp(ctx context.Context, data T) error {
	return s.move(ctx, data, -1)
}

// MoveDown 与后一条记录交换position
func (s *Service[T]) MoveDown(ctx context.Context, data T) error {
	return s.move(ctx, data, 1)
}

// move 交换相邻记录的position并在同一事务内保存
// 边界由Validator保证，越界时不做任何事
func (s *Service[T]) move(ctx context.Context, data T, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	SortByPosition(list)

	i := IndexOf(list, data.GetID())
	j := i + step
	if i < 0 || j < 0 || j >= len(list) {
		return nil
	}

	current, other := list[i], list[j]
	position := current.GetPosition()
	current.SetPosition(other.GetPosition())
	other.SetPosition(position)

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		return s.repo.SaveAll(ctx, []T{current, other})
	})
	if err != nil {
		return err
	}

	s.refresh(ctx)
	return nil
}

// UpdatePositions 按当前顺序把position重写为0..N-1并批量保存
func (s *Service[T]) UpdatePositions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	SortByPosition(list)

	for i, item := range list {
		item.SetPosition(i)
		if parent, ok := any(item).(Parent); ok {
			parent.UpdateChildPositions()
		}
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		return s.repo.SaveAll(ctx, list)
	})
	if err != nil {
		return err
	}

	s.refresh(ctx)
	return nil
}

// Invalidate 删除列表缓存，下次读取时回源
// 其他集合的写操作影响到本集合的内容时调用（如作者改名后图书列表里的作者）
func (s *Service[T]) Invalidate(ctx context.Context) {
	if err := s.cache.Evict(ctx, s.key); err != nil {
		s.logger.Warn("删除缓存key失败", zap.Error(err))
	}
}

// load 从仓储加载完整列表并写入缓存
func (s *Service[T]) load(ctx context.Context) ([]T, error) {
	data, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []T{}
	}
	SortByPosition(data)

	if err := s.cache.Put(ctx, s.key, data); err != nil {
		s.logger.Warn("写入缓存失败", zap.Error(err))
	}
	return data, nil
}

// refresh 写操作提交后重新加载列表
// 重新加载失败时删除key，下次读取会回源
func (s *Service[T]) refresh(ctx context.Context) {
	if _, err := s.load(ctx); err != nil {
		s.logger.Warn("刷新缓存失败，删除缓存key", zap.Error(err))
		if err := s.cache.Evict(ctx, s.key); err != nil {
			s.logger.Error("删除缓存key失败", zap.Error(err))
		}
	}
}
