package mysql

import (
	"time"

	"github.com/xiebiao/bookcase/internal/domain/account"
	"github.com/xiebiao/bookcase/internal/domain/author"
	"github.com/xiebiao/bookcase/internal/domain/book"
	"github.com/xiebiao/bookcase/internal/domain/category"
)

// GORM数据模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain层实体不依赖GORM，Repository负责两者之间的转换
// 3. 所有可排序表都有(position, id)索引，列表查询按该顺序返回

// AuthorModel 作者表
type AuthorModel struct {
	ID         uint      `gorm:"primaryKey"`
	FirstName  string    `gorm:"size:100;not null;comment:名"`
	MiddleName string    `gorm:"size:100;not null;default:'';comment:中间名"`
	LastName   string    `gorm:"size:100;not null;comment:姓"`
	Position   int       `gorm:"index:idx_authors_position;not null;comment:排序位置"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

func (AuthorModel) TableName() string {
	return "authors"
}

// CategoryModel 分类表
type CategoryModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100;not null;comment:名称"`
	Position  int       `gorm:"index:idx_categories_position;not null;comment:排序位置"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (CategoryModel) TableName() string {
	return "categories"
}

// BookModel 图书表
// 作者、分类通过关联表保存（带position以保持书内顺序），版本在items表
type BookModel struct {
	ID           uint      `gorm:"primaryKey"`
	CzechName    string    `gorm:"size:200;not null;comment:捷克语书名"`
	OriginalName string    `gorm:"size:200;not null;comment:原书名"`
	ISBN         string    `gorm:"column:isbn;size:20;not null;default:'';comment:ISBN"`
	IssueYear    int       `gorm:"not null;comment:出版年份"`
	Description  string    `gorm:"type:text;not null;comment:描述"`
	Note         string    `gorm:"type:text;not null;comment:备注"`
	Position     int       `gorm:"index:idx_books_position;not null;comment:排序位置"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`
}

func (BookModel) TableName() string {
	return "books"
}

// BookAuthorModel 图书-作者关联表
type BookAuthorModel struct {
	BookID   uint `gorm:"primaryKey;autoIncrement:false"`
	AuthorID uint `gorm:"primaryKey;autoIncrement:false;index"`
	Position int  `gorm:"not null;comment:作者在图书中的顺序"`
}

func (BookAuthorModel) TableName() string {
	return "book_authors"
}

// BookCategoryModel 图书-分类关联表
type BookCategoryModel struct {
	BookID     uint `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false;index"`
	Position   int  `gorm:"not null;comment:分类在图书中的顺序"`
}

func (BookCategoryModel) TableName() string {
	return "book_categories"
}

// ItemModel 版本表
// 学习要点：Languages使用GORM的json serializer存成一列，避免再建一张关联表
type ItemModel struct {
	ID        uint            `gorm:"primaryKey"`
	BookID    uint            `gorm:"index:idx_items_book;not null;comment:所属图书"`
	Languages []book.Language `gorm:"serializer:json;type:varchar(100);not null;comment:语言列表"`
	Format    string          `gorm:"size:10;not null;comment:格式"`
	Note      string          `gorm:"type:text;not null;comment:备注"`
	Position  int             `gorm:"index:idx_items_book;not null;comment:图书内排序位置"`
	CreatedAt time.Time       `gorm:"comment:创建时间"`
	UpdatedAt time.Time       `gorm:"comment:更新时间"`
}

func (ItemModel) TableName() string {
	return "items"
}

// AccountModel 账号表
type AccountModel struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:50;not null;comment:用户名"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Roles     []string  `gorm:"serializer:json;type:varchar(255);not null;comment:角色列表"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

// =========================================
// 模型转换
// =========================================

func toAuthorModel(a *author.Author) *AuthorModel {
	return &AuthorModel{
		ID:         a.ID,
		FirstName:  a.FirstName,
		MiddleName: a.MiddleName,
		LastName:   a.LastName,
		Position:   a.Position,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toAuthorEntity(m *AuthorModel) *author.Author {
	return &author.Author{
		ID:         m.ID,
		FirstName:  m.FirstName,
		MiddleName: m.MiddleName,
		LastName:   m.LastName,
		Position:   m.Position,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toCategoryModel(c *category.Category) *CategoryModel {
	return &CategoryModel{
		ID:        c.ID,
		Name:      c.Name,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCategoryEntity(m *CategoryModel) *category.Category {
	return &category.Category{
		ID:        m.ID,
		Name:      m.Name,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:           b.ID,
		CzechName:    b.CzechName,
		OriginalName: b.OriginalName,
		ISBN:         b.ISBN,
		IssueYear:    b.IssueYear,
		Description:  b.Description,
		Note:         b.Note,
		Position:     b.Position,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// toBookEntity 只转换标量字段，关联由bookRepository.load填充
func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:           m.ID,
		CzechName:    m.CzechName,
		OriginalName: m.OriginalName,
		ISBN:         m.ISBN,
		IssueYear:    m.IssueYear,
		Description:  m.Description,
		Note:         m.Note,
		Authors:      []*author.Author{},
		Categories:   []*category.Category{},
		Items:        []*book.Item{},
		Position:     m.Position,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toItemModel(bookID uint, i *book.Item) *ItemModel {
	return &ItemModel{
		ID:        i.ID,
		BookID:    bookID,
		Languages: append([]book.Language{}, i.Languages...),
		Format:    string(i.Format),
		Note:      i.Note,
		Position:  i.Position,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func toItemEntity(m *ItemModel) *book.Item {
	return &book.Item{
		ID:        m.ID,
		Languages: append([]book.Language{}, m.Languages...),
		Format:    book.Format(m.Format),
		Note:      m.Note,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toAccountModel(a *account.Account) *AccountModel {
	roles := make([]string, len(a.Roles))
	for i, role := range a.Roles {
		roles[i] = string(role)
	}
	return &AccountModel{
		ID:        a.ID,
		Username:  a.Username,
		Password:  a.Password,
		Roles:     roles,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAccountEntity(m *AccountModel) *account.Account {
	roles := make([]account.Role, len(m.Roles))
	for i, role := range m.Roles {
		roles[i] = account.Role(role)
	}
	return &account.Account{
		ID:        m.ID,
		Username:  m.Username,
		Password:  m.Password,
		Roles:     roles,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
