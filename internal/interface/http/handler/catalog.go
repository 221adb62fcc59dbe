package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookcase/internal/application/catalog"
	"github.com/xiebiao/bookcase/internal/domain/movable"
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
	"github.com/xiebiao/bookcase/pkg/response"
	"github.com/xiebiao/bookcase/pkg/result"
)

// catalogFacade 作者、分类、图书门面的公共方法（*catalog.Facade满足）
type catalogFacade[T movable.Data] interface {
	NewData(ctx context.Context) error
	GetAll(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uint) (T, *result.Result, error)
	Add(ctx context.Context, data T) (T, *result.Result, error)
	Update(ctx context.Context, data T) (T, *result.Result, error)
	Remove(ctx context.Context, data T) (*result.Result, error)
	Duplicate(ctx context.Context, data T) (*result.Result, error)
	MoveUp(ctx context.Context, data T) (*result.Result, error)
	MoveDown(ctx context.Context, data T) (*result.Result, error)
	UpdatePositions(ctx context.Context) error
}

// CatalogHandler 目录HTTP处理器（作者、分类、图书共用）
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用门面、返回响应
// 2. 门面返回的Result决定状态码：通过200/201，NOT_EXIST为404，其余校验错误为422
// 3. error只表示基础设施故障，交给response.Error处理
type CatalogHandler[T movable.Data] struct {
	facade catalogFacade[T]
	newT   func() T
}

// AuthorHandler 作者处理器
type AuthorHandler = CatalogHandler[*catalog.Author]

// CategoryHandler 分类处理器
type CategoryHandler = CatalogHandler[*catalog.Category]

// BookHandler 图书处理器
type BookHandler = CatalogHandler[*catalog.Book]

// NewAuthorHandler 创建作者处理器
func NewAuthorHandler(facade *catalog.AuthorFacade) *AuthorHandler {
	return &AuthorHandler{facade: facade, newT: func() *catalog.Author { return &catalog.Author{} }}
}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler(facade *catalog.CategoryFacade) *CategoryHandler {
	return &CategoryHandler{facade: facade, newT: func() *catalog.Category { return &catalog.Category{} }}
}

// NewBookHandler 创建图书处理器
func NewBookHandler(facade *catalog.BookFacade) *BookHandler {
	return &BookHandler{facade: facade, newT: func() *catalog.Book { return &catalog.Book{} }}
}

// List 查询全部（按position升序）
// @Summary      查询列表
// @Tags         目录
// @Produce      json
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Success      200 {object} response.Response "列表"
// @Failure      500 {object} response.Response "系统错误"
// @Router       /api/v1/{collection} [get]
func (h *CatalogHandler[T]) List(c *gin.Context) {
	data, err := h.facade.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, data)
}

// Get 按ID查询
// @Summary      按ID查询
// @Tags         目录
// @Produce      json
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Param        id path int true "ID"
// @Success      200 {object} response.Response "实体"
// @Failure      404 {object} response.Response{data=result.Result} "不存在"
// @Router       /api/v1/{collection}/{id} [get]
func (h *CatalogHandler[T]) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	data, r, err := h.facade.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Result(c, http.StatusOK, r, data)
}

// NewData 清空集合（仅管理员）
// @Summary      清空集合
// @Tags         目录
// @Security     BearerAuth
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/{collection}/new [post]
func (h *CatalogHandler[T]) NewData(c *gin.Context) {
	if err := h.facade.NewData(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Add 新增
// @Summary      新增
// @Tags         目录
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Success      201 {object} response.Response "带ID和position的实体"
// @Failure      400 {object} response.Response "请求体格式错误"
// @Failure      422 {object} response.Response{data=result.Result} "校验未通过"
// @Router       /api/v1/{collection}/add [put]
func (h *CatalogHandler[T]) Add(c *gin.Context) {
	data, ok := h.bind(c)
	if !ok {
		return
	}

	entity, r, err := h.facade.Add(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Result(c, http.StatusCreated, r, entity)
}

// Update 更新（position保持不变）
// @Summary      更新
// @Tags         目录
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Success      200 {object} response.Response "更新后的实体"
// @Failure      404 {object} response.Response{data=result.Result} "不存在"
// @Failure      422 {object} response.Response{data=result.Result} "校验未通过"
// @Router       /api/v1/{collection}/update [post]
func (h *CatalogHandler[T]) Update(c *gin.Context) {
	data, ok := h.bind(c)
	if !ok {
		return
	}

	entity, r, err := h.facade.Update(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Result(c, http.StatusOK, r, entity)
}

// Remove 删除
// @Summary      删除
// @Tags         目录
// @Security     BearerAuth
// @Accept       json
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Success      200 {object} response.Response{data=result.Result}
// @Failure      404 {object} response.Response{data=result.Result} "不存在"
// @Router       /api/v1/{collection}/remove [delete]
func (h *CatalogHandler[T]) Remove(c *gin.Context) {
	h.change(c, h.facade.Remove)
}

// Duplicate 复制到末尾
// @Summary      复制
// @Tags         目录
// @Security     BearerAuth
// @Accept       json
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Success      200 {object} response.Response{data=result.Result}
// @Failure      404 {object} response.Response{data=result.Result} "不存在"
// @Router       /api/v1/{collection}/duplicate [post]
func (h *CatalogHandler[T]) Duplicate(c *gin.Context) {
	h.change(c, h.facade.Duplicate)
}

// MoveUp 上移
// @Summary      上移
// @Tags         目录
// @Security     BearerAuth
// @Accept       json
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Success      200 {object} response.Response{data=result.Result}
// @Failure      422 {object} response.Response{data=result.Result} "已在第一位"
// @Router       /api/v1/{collection}/moveUp [post]
func (h *CatalogHandler[T]) MoveUp(c *gin.Context) {
	h.change(c, h.facade.MoveUp)
}

// MoveDown 下移
// @Summary      下移
// @Tags         目录
// @Security     BearerAuth
// @Accept       json
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Success      200 {object} response.Response{data=result.Result}
// @Failure      422 {object} response.Response{data=result.Result} "已在最后一位"
// @Router       /api/v1/{collection}/moveDown [post]
func (h *CatalogHandler[T]) MoveDown(c *gin.Context) {
	h.change(c, h.facade.MoveDown)
}

// UpdatePositions 重新编号为0..n-1
// @Summary      重排位置
// @Tags         目录
// @Security     BearerAuth
// @Param        collection path string true "集合" Enums(authors, categories, books)
// @Success      200 {object} response.Response
// @Router       /api/v1/{collection}/updatePositions [post]
func (h *CatalogHandler[T]) UpdatePositions(c *gin.Context) {
	if err := h.facade.UpdatePositions(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *CatalogHandler[T]) bind(c *gin.Context) (T, bool) {
	data := h.newT()
	if !bindJSON(c, data) {
		var zero T
		return zero, false
	}
	return data, true
}

// change 只返回校验结果的写操作
func (h *CatalogHandler[T]) change(c *gin.Context, op func(ctx context.Context, data T) (*result.Result, error)) {
	data, ok := h.bind(c)
	if !ok {
		return
	}

	r, err := op(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Result(c, http.StatusOK, r, nil)
}

// bindJSON 解析请求体，失败时直接返回400
// 学习要点：未知的枚举值（如format=EPUB）在这里就被拒绝
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数格式错误: "+err.Error())
		return false
	}
	return true
}

// pathID 解析路径中的ID参数
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的ID: "+c.Param(name))
		return 0, false
	}
	return uint(id), true
}
