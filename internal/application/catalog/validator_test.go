package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookcase/internal/domain/book"
	"github.com/xiebiao/bookcase/internal/domain/movable"
	"github.com/xiebiao/bookcase/pkg/result"
)

func TestAuthorValidator_Deep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		data *Author
		keys []string
	}{
		{
			name: "名为空字符串",
			data: &Author{FirstName: strPtr(""), MiddleName: strPtr("M"), LastName: strPtr("L")},
			keys: []string{"AUTHOR_FIRST_NAME_EMPTY"},
		},
		{
			name: "全部为null",
			data: &Author{},
			keys: []string{"AUTHOR_FIRST_NAME_NULL", "AUTHOR_MIDDLE_NAME_NULL", "AUTHOR_LAST_NAME_NULL"},
		},
		{
			name: "中间名可以为空白",
			data: &Author{FirstName: strPtr("Karel"), MiddleName: strPtr(" "), LastName: strPtr("Čapek")},
			keys: []string{},
		},
		{
			name: "姓为空白",
			data: &Author{FirstName: strPtr("Karel"), MiddleName: strPtr(""), LastName: strPtr("  ")},
			keys: []string{"AUTHOR_LAST_NAME_EMPTY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := f.authorValidator.Validate(ctx, tt.data, movable.ValidateNew, movable.ValidateDeep)
			require.NoError(t, err)
			assert.Equal(t, tt.keys, r.Keys())
		})
	}

	t.Run("NEW+DEEP场景：只报名为空", func(t *testing.T) {
		r, err := f.authorValidator.Validate(ctx, &Author{FirstName: strPtr(""), MiddleName: strPtr("M"), LastName: strPtr("L")},
			movable.ValidateNew, movable.ValidateDeep)
		require.NoError(t, err)
		assert.Equal(t, result.StatusError, r.Status())
		assert.Equal(t, "First name mustn't be empty string.", r.Events[0].Message)
	})
}

func TestAuthorValidator_MoveUpAtTop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.addAuthor(t, "A", "A")
	f.addAuthor(t, "B", "B")

	r, err := f.authorValidator.Validate(ctx, &Author{ID: first.ID}, movable.ValidateUp)
	require.NoError(t, err)
	assert.Equal(t, result.StatusError, r.Status())
	assert.Equal(t, []string{"AUTHOR_NOT_MOVABLE"}, r.Keys())
}

func TestCategoryValidator_Deep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.categoryValidator.Validate(ctx, &Category{}, movable.ValidateDeep)
	require.NoError(t, err)
	assert.Equal(t, []string{"CATEGORY_NAME_NULL"}, r.Keys())

	r, err = f.categoryValidator.Validate(ctx, &Category{Name: strPtr("\t")}, movable.ValidateDeep)
	require.NoError(t, err)
	assert.Equal(t, []string{"CATEGORY_NAME_EMPTY"}, r.Keys())
	assert.Equal(t, "Name mustn't be empty string.", r.Events[0].Message)
}

func TestBookValidator_IssueYear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	original := currentYear
	currentYear = func() int { return 2020 }
	t.Cleanup(func() { currentYear = original })

	tests := []struct {
		name string
		year *int
		keys []string
	}{
		{"下限减一", intPtr(MinIssueYear - 1), []string{"BOOK_ISSUE_YEAR_NOT_VALID"}},
		{"等于下限", intPtr(MinIssueYear), []string{}},
		{"等于当前年份", intPtr(2020), []string{}},
		{"超过当前年份", intPtr(2021), []string{"BOOK_ISSUE_YEAR_NOT_VALID"}},
		{"为null", nil, []string{"BOOK_ISSUE_YEAR_NULL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := newBook("Krakatit", nil, nil)
			data.IssueYear = tt.year

			r, err := f.bookValidator.Validate(ctx, data, movable.ValidateDeep)
			require.NoError(t, err)
			assert.Equal(t, tt.keys, r.Keys())
		})
	}

	r, err := f.bookValidator.Validate(ctx, &Book{
		CzechName: strPtr("x"), OriginalName: strPtr("x"), IssueYear: intPtr(1900),
		Description: strPtr("x"), Note: strPtr(""), Authors: []*Author{}, Categories: []*Category{},
	}, movable.ValidateDeep)
	require.NoError(t, err)
	assert.Equal(t, "Issue year must be between 1940 and 2020.", r.Events[0].Message)
}

func TestBookValidator_References(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addAuthor(t, "Karel", "Čapek")
	c := f.addCategory(t, "Sci-fi")

	t.Run("作者列表包含null", func(t *testing.T) {
		data := newBook("Krakatit", a, c)
		data.Authors = append(data.Authors, nil)

		r, err := f.bookValidator.Validate(ctx, data, movable.ValidateDeep)
		require.NoError(t, err)
		assert.Equal(t, []string{"BOOK_AUTHORS_CONTAIN_NULL"}, r.Keys())
	})

	t.Run("引用的作者不存在时原样冒泡", func(t *testing.T) {
		data := newBook("Krakatit", a, c)
		data.Authors = append(data.Authors, &Author{ID: uintPtr(404)})

		r, err := f.bookValidator.Validate(ctx, data, movable.ValidateDeep)
		require.NoError(t, err)
		// 只传ID的引用同时不满足作者的DEEP规则
		assert.Equal(t, []string{
			"AUTHOR_NOT_EXIST",
			"AUTHOR_FIRST_NAME_NULL", "AUTHOR_MIDDLE_NAME_NULL", "AUTHOR_LAST_NAME_NULL",
		}, r.Keys())
	})

	t.Run("完整引用通过校验", func(t *testing.T) {
		data := newBook("Krakatit", a, c)

		r, err := f.bookValidator.Validate(ctx, data, movable.ValidateDeep)
		require.NoError(t, err)
		assert.Empty(t, r.Keys())
	})

	t.Run("列表为null", func(t *testing.T) {
		data := newBook("Krakatit", nil, nil)
		data.Authors = nil
		data.Categories = nil

		r, err := f.bookValidator.Validate(ctx, data, movable.ValidateDeep)
		require.NoError(t, err)
		assert.Equal(t, []string{"BOOK_AUTHORS_NULL", "BOOK_CATEGORIES_NULL"}, r.Keys())
	})

	t.Run("同一作者或分类重复引用", func(t *testing.T) {
		data := newBook("Krakatit", a, c)
		data.Authors = append(data.Authors, a)
		data.Categories = append(data.Categories, c)

		r, err := f.bookValidator.Validate(ctx, data, movable.ValidateDeep)
		require.NoError(t, err)
		assert.Equal(t, []string{"BOOK_AUTHORS_DUPLICATE", "BOOK_CATEGORIES_DUPLICATE"}, r.Keys())
	})

	t.Run("分类包含null且作者有效", func(t *testing.T) {
		data := newBook("Krakatit", nil, nil)
		data.Authors = []*Author{a}
		data.Categories = []*Category{nil}

		r, err := f.bookValidator.Validate(ctx, data, movable.ValidateDeep)
		require.NoError(t, err)
		assert.Equal(t, []string{"BOOK_CATEGORIES_CONTAIN_NULL"}, r.Keys())
	})
}

func TestBookValidator_ScalarOrder(t *testing.T) {
	f := newFixture(t)

	r, err := f.bookValidator.Validate(context.Background(), &Book{ID: uintPtr(1)}, movable.ValidateNew, movable.ValidateDeep)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"BOOK_ID_NOT_NULL",
		"BOOK_CZECH_NAME_NULL",
		"BOOK_ORIGINAL_NAME_NULL",
		"BOOK_ISSUE_YEAR_NULL",
		"BOOK_DESCRIPTION_NULL",
		"BOOK_NOTE_NULL",
		"BOOK_AUTHORS_NULL",
		"BOOK_CATEGORIES_NULL",
	}, r.Keys())
}

func TestItemValidator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.addBook(t, "Krakatit", nil, nil)
	first := f.addItem(t, *b.ID, book.FormatPaper)
	second := f.addItem(t, *b.ID, book.FormatPDF)

	t.Run("DEEP", func(t *testing.T) {
		cz := book.LanguageCZ
		tests := []struct {
			name string
			data *Item
			keys []string
		}{
			{"全部为null", &Item{}, []string{"ITEM_LANGUAGES_NULL", "ITEM_FORMAT_NULL", "ITEM_NOTE_NULL"}},
			{"语言为空列表", &Item{Languages: []*book.Language{}, Format: new(book.Format), Note: strPtr("")}, []string{"ITEM_LANGUAGES_EMPTY"}},
			{"语言包含null", &Item{Languages: []*book.Language{&cz, nil}, Format: new(book.Format), Note: strPtr("")}, []string{"ITEM_LANGUAGES_CONTAIN_NULL"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r, err := f.itemValidator.Validate(ctx, tt.data, movable.ValidateDeep)
				require.NoError(t, err)
				assert.Equal(t, tt.keys, r.Keys())
			})
		}
	})

	t.Run("存在性扫描所有图书", func(t *testing.T) {
		r, err := f.itemValidator.Validate(ctx, &Item{ID: second.ID}, movable.ValidateExists)
		require.NoError(t, err)
		assert.Empty(t, r.Keys())

		r, err = f.itemValidator.Validate(ctx, &Item{ID: uintPtr(99999)}, movable.ValidateExists)
		require.NoError(t, err)
		assert.Equal(t, []string{"ITEM_NOT_EXIST"}, r.Keys())
		assert.Equal(t, "Item doesn't exist.", r.Events[0].Message)
	})

	t.Run("移动边界在所属图书内计算", func(t *testing.T) {
		r, err := f.itemValidator.Validate(ctx, &Item{ID: first.ID}, movable.ValidateUp)
		require.NoError(t, err)
		assert.Equal(t, []string{"ITEM_NOT_MOVABLE"}, r.Keys())

		r, err = f.itemValidator.Validate(ctx, &Item{ID: second.ID}, movable.ValidateDown)
		require.NoError(t, err)
		assert.Equal(t, []string{"ITEM_NOT_MOVABLE"}, r.Keys())

		r, err = f.itemValidator.Validate(ctx, &Item{ID: second.ID}, movable.ValidateUp)
		require.NoError(t, err)
		assert.Empty(t, r.Keys())
	})
}
