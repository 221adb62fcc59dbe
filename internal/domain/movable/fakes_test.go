package movable

import (
	"context"
	"errors"
	"sync"

	"github.com/goccy/go-json"

	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

// record 测试用实体
type record struct {
	ID       uint
	Name     string
	Position int
	Children []int
}

func (r *record) GetID() uint              { return r.ID }
func (r *record) GetPosition() int         { return r.Position }
func (r *record) SetPosition(position int) { r.Position = position }

func (r *record) Copy() *record {
	c := *r
	c.ID = 0
	c.Children = append([]int(nil), r.Children...)
	return &c
}

func (r *record) UpdateChildPositions() {
	for i := range r.Children {
		r.Children[i] = i
	}
}

// fakeRepository 内存仓储（模拟自增ID）
type fakeRepository struct {
	mu       sync.Mutex
	rows     map[uint]record
	nextID   uint
	findAlls int
	failSave bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: map[uint]record{}, nextID: 1}
}

func (f *fakeRepository) FindAll(ctx context.Context) ([]*record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findAlls++

	data := make([]*record, 0, len(f.rows))
	for _, row := range f.rows {
		c := row
		c.Children = append([]int(nil), row.Children...)
		data = append(data, &c)
	}
	SortByPosition(data)
	return data, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uint) (*record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &row, nil
}

func (f *fakeRepository) Save(ctx context.Context, data *record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("save failed")
	}
	if data.ID == 0 {
		data.ID = f.nextID
		f.nextID++
	}
	c := *data
	c.Children = append([]int(nil), data.Children...)
	f.rows[data.ID] = c
	return nil
}

func (f *fakeRepository) SaveAll(ctx context.Context, data []*record) error {
	for _, d := range data {
		if err := f.Save(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, data *record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, data.ID)
	return nil
}

func (f *fakeRepository) DeleteAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = map[uint]record{}
	return nil
}

func (f *fakeRepository) positions() map[uint]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	positions := make(map[uint]int, len(f.rows))
	for id, row := range f.rows {
		positions[id] = row.Position
	}
	return positions
}

// fakeCache 以JSON字节保存列表，行为与redis/lru实现一致
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failGet bool
	clears  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("cache unavailable")
	}
	body, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(body, dest)
}

func (c *fakeCache) Put(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = body
	return nil
}

func (c *fakeCache) Evict(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.clears++
	return nil
}

// item 外部数据
type item struct {
	ID   *uint
	Name *string
}

func (i *item) Identifier() *uint { return i.ID }

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }
