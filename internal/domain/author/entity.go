package author

import (
	"time"
)

// Author 作者实体
// 说明：
// 1. ID为0表示尚未持久化
// 2. Position决定作者在列表中的顺序（0..N-1）
// 3. MiddleName可以为空字符串，但外部数据中不允许为null
type Author struct {
	ID         uint
	FirstName  string
	MiddleName string
	LastName   string
	Position   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a *Author) GetID() uint {
	return a.ID
}

func (a *Author) GetPosition() int {
	return a.Position
}

func (a *Author) SetPosition(position int) {
	a.Position = position
}

// Copy 复制作者（ID和审计时间清零）
func (a *Author) Copy() *Author {
	return &Author{
		FirstName:  a.FirstName,
		MiddleName: a.MiddleName,
		LastName:   a.LastName,
		Position:   a.Position,
	}
}
