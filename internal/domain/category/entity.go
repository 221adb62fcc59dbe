package category

import (
	"time"
)

// Category 图书分类
type Category struct {
	ID        uint
	Name      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) GetID() uint {
	return c.ID
}

func (c *Category) GetPosition() int {
	return c.Position
}

func (c *Category) SetPosition(position int) {
	c.Position = position
}

// Copy 复制分类（ID和审计时间清零）
func (c *Category) Copy() *Category {
	return &Category{
		Name:     c.Name,
		Position: c.Position,
	}
}
