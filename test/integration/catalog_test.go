//go:build integration

package integration

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：目录模块集成测试
// 测试场景覆盖：
// 1. 公开的查询接口、需要认证的写接口
// 2. 校验失败时422和事件key，不存在时404
// 3. 新增到末尾、上移、复制
// 4. 图书引用作者和分类，删除作者时同时清理引用
// 不调用/new，避免清空共享环境的数据

type author struct {
	ID         *uint   `json:"id"`
	FirstName  *string `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name"`
	Position   *int    `json:"position"`
}

type category struct {
	ID       *uint   `json:"id"`
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

type bookData struct {
	ID           *uint       `json:"id"`
	CzechName    *string     `json:"czech_name"`
	OriginalName *string     `json:"original_name"`
	ISBN         *string     `json:"isbn"`
	IssueYear    *int        `json:"issue_year"`
	Description  *string     `json:"description"`
	Note         *string     `json:"note"`
	Authors      []*author   `json:"authors"`
	Categories   []*category `json:"categories"`
	Position     *int        `json:"position"`
}

type item struct {
	ID        *uint    `json:"id"`
	Languages []string `json:"languages"`
	Format    *string  `json:"format"`
	Note      *string  `json:"note"`
	Position  *int     `json:"position"`
}

func addAuthor(t *testing.T, token, lastName string) author {
	t.Helper()
	resp := Do(t, http.MethodPut, BaseURL+"/authors/add",
		author{FirstName: Ptr("Jan"), MiddleName: Ptr(""), LastName: Ptr(lastName)}, token)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Message)
	return Decode[author](t, resp)
}

func addCategory(t *testing.T, token string) category {
	t.Helper()
	resp := Do(t, http.MethodPut, BaseURL+"/categories/add", category{Name: Ptr(UniqueName("cat"))}, token)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Message)
	return Decode[category](t, resp)
}

func TestAuthorCatalog(t *testing.T) {
	token := Login(t, "catalog_editor")

	t.Run("未登录不能新增", func(t *testing.T) {
		resp := Do(t, http.MethodPut, BaseURL+"/authors/add", author{}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})

	t.Run("字段为空返回422", func(t *testing.T) {
		resp := Do(t, http.MethodPut, BaseURL+"/authors/add", author{}, token)
		require.Equal(t, http.StatusUnprocessableEntity, resp.Status)
		keys := Decode[ResultData](t, resp).EventKeys()
		assert.Contains(t, keys, "AUTHOR_FIRST_NAME_NULL")
		assert.Contains(t, keys, "AUTHOR_LAST_NAME_NULL")
	})

	t.Run("新增到末尾并上移", func(t *testing.T) {
		first := addAuthor(t, token, UniqueName("A"))
		second := addAuthor(t, token, UniqueName("B"))
		require.NotNil(t, second.Position)
		assert.Equal(t, *first.Position+1, *second.Position)

		resp := Do(t, http.MethodPost, BaseURL+"/authors/moveUp", second, token)
		require.Equal(t, http.StatusOK, resp.Status, resp.Message)

		moved := Decode[author](t, Do(t, http.MethodGet, BaseURL+"/authors/"+idString(second.ID), nil, ""))
		assert.Equal(t, *first.Position, *moved.Position)
	})

	t.Run("不存在返回404", func(t *testing.T) {
		resp := Do(t, http.MethodGet, BaseURL+"/authors/999999999", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("复制", func(t *testing.T) {
		a := addAuthor(t, token, UniqueName("C"))
		before := Decode[[]author](t, Do(t, http.MethodGet, BaseURL+"/authors", nil, ""))

		resp := Do(t, http.MethodPost, BaseURL+"/authors/duplicate", a, token)
		require.Equal(t, http.StatusOK, resp.Status, resp.Message)

		after := Decode[[]author](t, Do(t, http.MethodGet, BaseURL+"/authors", nil, ""))
		require.Len(t, after, len(before)+1)
		last := after[len(after)-1]
		assert.Equal(t, *a.LastName, *last.LastName)
		assert.NotEqual(t, *a.ID, *last.ID)
	})
}

func TestBookWithItems(t *testing.T) {
	token := Login(t, "catalog_editor")
	a := addAuthor(t, token, UniqueName("Writer"))
	c := addCategory(t, token)

	resp := Do(t, http.MethodPut, BaseURL+"/books/add", bookData{
		CzechName:    Ptr(UniqueName("Kniha")),
		OriginalName: Ptr("Book"),
		ISBN:         Ptr(""),
		IssueYear:    Ptr(2020),
		Description:  Ptr("集成测试用图书"),
		Note:         Ptr(""),
		Authors:      []*author{&a},
		Categories:   []*category{&c},
	}, token)
	require.Equal(t, http.StatusCreated, resp.Status, resp.Message)
	b := Decode[bookData](t, resp)
	require.Len(t, b.Authors, 1)
	assert.Equal(t, *a.LastName, *b.Authors[0].LastName)

	t.Run("删除作者后图书不再引用", func(t *testing.T) {
		other := addAuthor(t, token, UniqueName("Other"))
		resp := Do(t, http.MethodPost, BaseURL+"/books/update", bookData{
			ID: b.ID, CzechName: b.CzechName, OriginalName: b.OriginalName, ISBN: b.ISBN,
			IssueYear: b.IssueYear, Description: b.Description, Note: b.Note,
			Authors: []*author{&a, &other}, Categories: []*category{&c},
		}, token)
		require.Equal(t, http.StatusOK, resp.Status, resp.Message)

		resp = Do(t, http.MethodDelete, BaseURL+"/authors/remove", other, token)
		require.Equal(t, http.StatusOK, resp.Status, resp.Message)

		updated := Decode[bookData](t, Do(t, http.MethodGet, BaseURL+"/books/"+idString(b.ID), nil, ""))
		require.Len(t, updated.Authors, 1)
		assert.Equal(t, *a.ID, *updated.Authors[0].ID)
	})

	t.Run("新增版本", func(t *testing.T) {
		resp := Do(t, http.MethodPut, BaseURL+"/books/"+idString(b.ID)+"/items/add",
			item{Languages: []string{"CZ", "EN"}, Format: Ptr("PAPER"), Note: Ptr("")}, token)
		require.Equal(t, http.StatusCreated, resp.Status, resp.Message)

		items := Decode[[]item](t, Do(t, http.MethodGet, BaseURL+"/books/"+idString(b.ID)+"/items", nil, ""))
		require.Len(t, items, 1)
		assert.Equal(t, []string{"CZ", "EN"}, items[0].Languages)
	})

	t.Run("未知格式返回400", func(t *testing.T) {
		resp := Do(t, http.MethodPut, BaseURL+"/books/"+idString(b.ID)+"/items/add",
			map[string]any{"languages": []string{"CZ"}, "format": "EPUB", "note": ""}, token)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("删除图书", func(t *testing.T) {
		resp := Do(t, http.MethodDelete, BaseURL+"/books/remove", bookData{ID: b.ID}, token)
		require.Equal(t, http.StatusOK, resp.Status, resp.Message)
		assert.Equal(t, http.StatusNotFound, Do(t, http.MethodGet, BaseURL+"/books/"+idString(b.ID), nil, "").Status)
	})
}

func idString(id *uint) string {
	if id == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*id), 10)
}
