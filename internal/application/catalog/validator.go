package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xiebiao/bookcase/internal/domain/author"
	"github.com/xiebiao/bookcase/internal/domain/book"
	"github.com/xiebiao/bookcase/internal/domain/category"
	"github.com/xiebiao/bookcase/internal/domain/movable"
	"github.com/xiebiao/bookcase/pkg/result"
)

// MinIssueYear 出版年份下限
const MinIssueYear = 1940

// currentYear 出版年份上限（测试中可替换）
var currentYear = func() int {
	return time.Now().Year()
}

// AuthorValidator 作者校验器
type AuthorValidator = movable.Validator[*Author, *author.Author]

// CategoryValidator 分类校验器
type CategoryValidator = movable.Validator[*Category, *category.Category]

// ItemValidator 版本校验器
type ItemValidator = movable.Validator[*Item, *book.Item]

// NewAuthorValidator 创建作者校验器
// DEEP规则：名、姓不能为null或空白；中间名不能为null（可以为空字符串）
func NewAuthorValidator(service *author.Service) *AuthorValidator {
	lookup := movable.NewServiceLookup[*Author, *author.Author](service)
	return movable.NewValidator[*Author, *author.Author]("Author", lookup, validateAuthor)
}

func validateAuthor(_ context.Context, data *Author, r *result.Result) error {
	checkText(r, "AUTHOR_FIRST_NAME", "First name", data.FirstName)
	checkNotNull(r, "AUTHOR_MIDDLE_NAME", "Middle name", data.MiddleName == nil)
	checkText(r, "AUTHOR_LAST_NAME", "Last name", data.LastName)
	return nil
}

// NewCategoryValidator 创建分类校验器
func NewCategoryValidator(service *category.Service) *CategoryValidator {
	lookup := movable.NewServiceLookup[*Category, *category.Category](service)
	return movable.NewValidator[*Category, *category.Category]("Category", lookup, validateCategory)
}

func validateCategory(_ context.Context, data *Category, r *result.Result) error {
	checkText(r, "CATEGORY_NAME", "Name", data.Name)
	return nil
}

// BookValidator 图书校验器
// 设计说明：通过组合持有作者、分类校验器，对引用逐个执行EXISTS+DEEP，
// 嵌套产生的事件原样并入图书的结果（key不改写）
type BookValidator struct {
	*movable.Validator[*Book, *book.Book]
	authors    *AuthorValidator
	categories *CategoryValidator
}

// NewBookValidator 创建图书校验器
func NewBookValidator(service *book.Service, authors *AuthorValidator, categories *CategoryValidator) *BookValidator {
	v := &BookValidator{
		authors:    authors,
		categories: categories,
	}
	lookup := movable.NewServiceLookup[*Book, *book.Book](service)
	v.Validator = movable.NewValidator[*Book, *book.Book]("Book", lookup, v.validateDeep)
	return v
}

// validateDeep 先校验标量字段，再校验作者引用，最后校验分类引用
func (v *BookValidator) validateDeep(ctx context.Context, data *Book, r *result.Result) error {
	checkText(r, "BOOK_CZECH_NAME", "Czech name", data.CzechName)
	checkText(r, "BOOK_ORIGINAL_NAME", "Original name", data.OriginalName)

	maxYear := currentYear()
	switch {
	case data.IssueYear == nil:
		r.AddError("BOOK_ISSUE_YEAR_NULL", "Issue year mustn't be null.")
	case *data.IssueYear < MinIssueYear || *data.IssueYear > maxYear:
		r.AddError("BOOK_ISSUE_YEAR_NOT_VALID", fmt.Sprintf("Issue year must be between %d and %d.", MinIssueYear, maxYear))
	}

	checkText(r, "BOOK_DESCRIPTION", "Description", data.Description)
	checkNotNull(r, "BOOK_NOTE", "Note", data.Note == nil)

	if data.Authors == nil {
		r.AddError("BOOK_AUTHORS_NULL", "Authors mustn't be null.")
	} else {
		if slices.Contains(data.Authors, nil) {
			r.AddError("BOOK_AUTHORS_CONTAIN_NULL", "Authors mustn't contain null value.")
		}
		if hasDuplicateRef(data.Authors, (*Author).Identifier) {
			r.AddError("BOOK_AUTHORS_DUPLICATE", "Authors mustn't contain the same author twice.")
		}
		for _, a := range data.Authors {
			if a == nil {
				continue
			}
			nested, err := v.authors.Validate(ctx, a, movable.ValidateExists, movable.ValidateDeep)
			if err != nil {
				return err
			}
			r.Merge(nested)
		}
	}

	if data.Categories == nil {
		r.AddError("BOOK_CATEGORIES_NULL", "Categories mustn't be null.")
	} else {
		if slices.Contains(data.Categories, nil) {
			r.AddError("BOOK_CATEGORIES_CONTAIN_NULL", "Categories mustn't contain null value.")
		}
		if hasDuplicateRef(data.Categories, (*Category).Identifier) {
			r.AddError("BOOK_CATEGORIES_DUPLICATE", "Categories mustn't contain the same category twice.")
		}
		for _, c := range data.Categories {
			if c == nil {
				continue
			}
			nested, err := v.categories.Validate(ctx, c, movable.ValidateExists, movable.ValidateDeep)
			if err != nil {
				return err
			}
			r.Merge(nested)
		}
	}

	return nil
}

// NewItemValidator 创建版本校验器
// 版本属于图书，存在性与移动校验扫描所有图书的版本列表
func NewItemValidator(books *book.Service) *ItemValidator {
	return movable.NewValidator[*Item, *book.Item]("Item", itemLookup{books: books}, validateItem)
}

func validateItem(_ context.Context, data *Item, r *result.Result) error {
	switch {
	case data.Languages == nil:
		r.AddError("ITEM_LANGUAGES_NULL", "Languages mustn't be null.")
	case len(data.Languages) == 0:
		r.AddError("ITEM_LANGUAGES_EMPTY", "Languages mustn't be empty list.")
	case slices.Contains(data.Languages, nil):
		r.AddError("ITEM_LANGUAGES_CONTAIN_NULL", "Languages mustn't contain null value.")
	}

	checkNotNull(r, "ITEM_FORMAT", "Format", data.Format == nil)
	checkNotNull(r, "ITEM_NOTE", "Note", data.Note == nil)
	return nil
}

// itemLookup 在所有图书的版本中查找
type itemLookup struct {
	books *book.Service
}

func (l itemLookup) Find(ctx context.Context, data *Item) (*book.Item, bool, error) {
	parent, err := findParent(ctx, l.books, *data.ID)
	if err != nil || parent == nil {
		return nil, false, err
	}
	item, ok := parent.FindItem(*data.ID)
	return item, ok, nil
}

func (l itemLookup) List(ctx context.Context, data *Item) ([]*book.Item, error) {
	parent, err := findParent(ctx, l.books, *data.ID)
	if err != nil || parent == nil {
		return nil, err
	}
	return parent.Items, nil
}

// findParent 返回包含指定版本的图书，找不到返回nil
func findParent(ctx context.Context, books *book.Service, itemID uint) (*book.Book, error) {
	all, err := books.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if _, ok := b.FindItem(itemID); ok {
			return b, nil
		}
	}
	return nil, nil
}

// checkText 字段不能为null，也不能是空白字符串
func checkText(r *result.Result, key, label string, value *string) {
	switch {
	case value == nil:
		r.AddError(key+"_NULL", label+" mustn't be null.")
	case strings.TrimSpace(*value) == "":
		r.AddError(key+"_EMPTY", label+" mustn't be empty string.")
	}
}

// hasDuplicateRef 引用列表中是否有重复ID（关联表以(book_id, 引用id)为主键）
func hasDuplicateRef[T any](refs []*T, id func(*T) *uint) bool {
	seen := make(map[uint]struct{}, len(refs))
	for _, ref := range refs {
		if ref == nil || id(ref) == nil {
			continue
		}
		if _, ok := seen[*id(ref)]; ok {
			return true
		}
		seen[*id(ref)] = struct{}{}
	}
	return false
}

// checkNotNull 字段不能为null
func checkNotNull(r *result.Result, key, label string, isNull bool) {
	if isNull {
		r.AddError(key+"_NULL", label+" mustn't be null.")
	}
}
