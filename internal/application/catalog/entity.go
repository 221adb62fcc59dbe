package catalog

import (
	"github.com/xiebiao/bookcase/internal/domain/book"
)

// 外部实体（API边界）
// 设计说明：
// 1. 字段使用指针，区分"未传（null）"与"空字符串"，校验器据此给出_NULL或_EMPTY
// 2. 同时作为HTTP请求体和响应体（json tag）
// 3. 领域对象见internal/domain，转换见mapper.go

// Author 作者
type Author struct {
	ID         *uint   `json:"id"`
	FirstName  *string `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name"`
	Position   *int    `json:"position"`
}

func (a *Author) Identifier() *uint {
	return a.ID
}

// Category 分类
type Category struct {
	ID       *uint   `json:"id"`
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

func (c *Category) Identifier() *uint {
	return c.ID
}

// Book 图书（不包含版本，版本通过ItemFacade维护）
type Book struct {
	ID           *uint       `json:"id"`
	CzechName    *string     `json:"czech_name"`
	OriginalName *string     `json:"original_name"`
	ISBN         *string     `json:"isbn"`
	IssueYear    *int        `json:"issue_year"`
	Description  *string     `json:"description"`
	Note         *string     `json:"note"`
	Authors      []*Author   `json:"authors"`
	Categories   []*Category `json:"categories"`
	Position     *int        `json:"position"`
}

func (b *Book) Identifier() *uint {
	return b.ID
}

// Item 图书版本
type Item struct {
	ID        *uint            `json:"id"`
	Languages []*book.Language `json:"languages" swaggertype:"array,string" enums:"CZ,EN,FR,JP,SK"`
	Format    *book.Format     `json:"format" swaggertype:"string" enums:"PAPER,PDF,DOC,TXT"`
	Note      *string          `json:"note"`
	Position  *int             `json:"position"`
}

func (i *Item) Identifier() *uint {
	return i.ID
}
