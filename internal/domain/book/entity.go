package book

import (
	"time"

	"github.com/xiebiao/bookcase/internal/domain/author"
	"github.com/xiebiao/bookcase/internal/domain/category"
	"github.com/xiebiao/bookcase/internal/domain/movable"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根,Items(版本)只能通过Book读写
// 2. Authors、Categories是对其他聚合的引用(多对多),保存时只写关联表
// 3. ISBN可以为空字符串
type Book struct {
	ID           uint
	CzechName    string
	OriginalName string
	ISBN         string
	IssueYear    int
	Description  string
	Note         string
	Authors      []*author.Author
	Categories   []*category.Category
	Items        []*Item
	Position     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (b *Book) GetID() uint {
	return b.ID
}

func (b *Book) GetPosition() int {
	return b.Position
}

func (b *Book) SetPosition(position int) {
	b.Position = position
}

// Copy 复制图书
// 说明：作者、分类仍引用原记录；版本一并复制且ID清零
func (b *Book) Copy() *Book {
	c := &Book{
		CzechName:    b.CzechName,
		OriginalName: b.OriginalName,
		ISBN:         b.ISBN,
		IssueYear:    b.IssueYear,
		Description:  b.Description,
		Note:         b.Note,
		Authors:      append([]*author.Author(nil), b.Authors...),
		Categories:   append([]*category.Category(nil), b.Categories...),
		Position:     b.Position,
	}
	for _, item := range b.Items {
		c.Items = append(c.Items, item.Copy())
	}
	return c
}

// UpdateChildPositions 按当前顺序重排版本的position
func (b *Book) UpdateChildPositions() {
	movable.SortByPosition(b.Items)
	movable.Renumber(b.Items)
}

// FindItem 按ID查找版本
func (b *Book) FindItem(id uint) (*Item, bool) {
	if i := movable.IndexOf(b.Items, id); i >= 0 {
		return b.Items[i], true
	}
	return nil, false
}

// AddItem 追加版本，position = 当前版本数量
func (b *Book) AddItem(item *Item) {
	item.Position = len(b.Items)
	b.Items = append(b.Items, item)
}

// RemoveItem 删除版本并重排剩余版本
func (b *Book) RemoveItem(id uint) {
	i := movable.IndexOf(b.Items, id)
	if i < 0 {
		return
	}
	b.Items = append(b.Items[:i], b.Items[i+1:]...)
	b.UpdateChildPositions()
}

// ReplaceItem 整体替换版本，保留原position
func (b *Book) ReplaceItem(item *Item) {
	i := movable.IndexOf(b.Items, item.ID)
	if i < 0 {
		return
	}
	item.Position = b.Items[i].Position
	b.Items[i] = item
}

// MoveItem 与相邻版本交换position，step为-1上移、1下移
// 越界时不做任何事（边界由校验器保证）
func (b *Book) MoveItem(id uint, step int) {
	movable.SortByPosition(b.Items)
	i := movable.IndexOf(b.Items, id)
	j := i + step
	if i < 0 || j < 0 || j >= len(b.Items) {
		return
	}
	b.Items[i].Position, b.Items[j].Position = b.Items[j].Position, b.Items[i].Position
}

// Item 图书版本（纸质书、PDF等）
type Item struct {
	ID        uint
	Languages []Language
	Format    Format
	Note      string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *Item) GetID() uint {
	return i.ID
}

func (i *Item) GetPosition() int {
	return i.Position
}

func (i *Item) SetPosition(position int) {
	i.Position = position
}

// Copy 复制版本（ID和审计时间清零）
func (i *Item) Copy() *Item {
	return &Item{
		Languages: append([]Language(nil), i.Languages...),
		Format:    i.Format,
		Note:      i.Note,
		Position:  i.Position,
	}
}
