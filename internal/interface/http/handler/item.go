package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookcase/internal/application/catalog"
	"github.com/xiebiao/bookcase/pkg/response"
	"github.com/xiebiao/bookcase/pkg/result"
)

// itemFacade 版本门面（*catalog.ItemFacade满足）
type itemFacade interface {
	Get(ctx context.Context, id uint) (*catalog.Item, *result.Result, error)
	Find(ctx context.Context, bookID uint) ([]*catalog.Item, *result.Result, error)
	Add(ctx context.Context, bookID uint, data *catalog.Item) (*catalog.Item, *result.Result, error)
	Update(ctx context.Context, data *catalog.Item) (*catalog.Item, *result.Result, error)
	Remove(ctx context.Context, data *catalog.Item) (*result.Result, error)
	Duplicate(ctx context.Context, data *catalog.Item) (*result.Result, error)
	MoveUp(ctx context.Context, data *catalog.Item) (*result.Result, error)
	MoveDown(ctx context.Context, data *catalog.Item) (*result.Result, error)
}

// ItemHandler 图书版本HTTP处理器
// 版本属于图书聚合，所有写操作最终保存父图书
type ItemHandler struct {
	facade itemFacade
}

// NewItemHandler 创建版本处理器
func NewItemHandler(facade *catalog.ItemFacade) *ItemHandler {
	return &ItemHandler{facade: facade}
}

// ListByBook 查询图书的全部版本
// @Summary      查询图书版本
// @Tags         版本
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=[]catalog.Item}
// @Failure      404 {object} response.Response{data=result.Result} "图书不存在"
// @Router       /api/v1/books/{id}/items [get]
func (h *ItemHandler) ListByBook(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	items, r, err := h.facade.Find(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Result(c, http.StatusOK, r, items)
}

// Add 为图书新增版本
// @Summary      新增版本
// @Tags         版本
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "图书ID"
// @Param        request body catalog.Item true "版本"
// @Success      201 {object} response.Response{data=catalog.Item}
// @Failure      404 {object} response.Response{data=result.Result} "图书不存在"
// @Failure      422 {object} response.Response{data=result.Result} "校验未通过"
// @Router       /api/v1/books/{id}/items/add [put]
func (h *ItemHandler) Add(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var data catalog.Item
	if !bindJSON(c, &data) {
		return
	}

	item, r, err := h.facade.Add(c.Request.Context(), bookID, &data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Result(c, http.StatusCreated, r, item)
}

// Get 按ID查询版本
// @Summary      查询版本
// @Tags         版本
// @Produce      json
// @Param        id path int true "版本ID"
// @Success      200 {object} response.Response{data=catalog.Item}
// @Failure      404 {object} response.Response{data=result.Result} "不存在"
// @Router       /api/v1/items/{id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, r, err := h.facade.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Result(c, http.StatusOK, r, item)
}

// Update 更新版本
// @Summary      更新版本
// @Tags         版本
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body catalog.Item true "版本"
// @Success      200 {object} response.Response{data=catalog.Item}
// @Failure      422 {object} response.Response{data=result.Result} "校验未通过"
// @Router       /api/v1/items/update [post]
func (h *ItemHandler) Update(c *gin.Context) {
	var data catalog.Item
	if !bindJSON(c, &data) {
		return
	}

	item, r, err := h.facade.Update(c.Request.Context(), &data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Result(c, http.StatusOK, r, item)
}

// Remove 删除版本
// @Summary      删除版本
// @Tags         版本
// @Security     BearerAuth
// @Accept       json
// @Param        request body catalog.Item true "版本（只需id）"
// @Success      200 {object} response.Response{data=result.Result}
// @Router       /api/v1/items/remove [delete]
func (h *ItemHandler) Remove(c *gin.Context) {
	h.change(c, h.facade.Remove)
}

// Duplicate 复制版本
// @Summary      复制版本
// @Tags         版本
// @Security     BearerAuth
// @Accept       json
// @Param        request body catalog.Item true "版本（只需id）"
// @Success      200 {object} response.Response{data=result.Result}
// @Router       /api/v1/items/duplicate [post]
func (h *ItemHandler) Duplicate(c *gin.Context) {
	h.change(c, h.facade.Duplicate)
}

// MoveUp 版本上移
// @Summary      版本上移
// @Tags         版本
// @Security     BearerAuth
// @Accept       json
// @Param        request body catalog.Item true "版本（只需id）"
// @Success      200 {object} response.Response{data=result.Result}
// @Router       /api/v1/items/moveUp [post]
func (h *ItemHandler) MoveUp(c *gin.Context) {
	h.change(c, h.facade.MoveUp)
}

// MoveDown 版本下移
// @Summary      版本下移
// @Tags         版本
// @Security     BearerAuth
// @Accept       json
// @Param        request body catalog.Item true "版本（只需id）"
// @Success      200 {object} response.Response{data=result.Result}
// @Router       /api/v1/items/moveDown [post]
func (h *ItemHandler) MoveDown(c *gin.Context) {
	h.change(c, h.facade.MoveDown)
}

func (h *ItemHandler) change(c *gin.Context, op func(ctx context.Context, data *catalog.Item) (*result.Result, error)) {
	var data catalog.Item
	if !bindJSON(c, &data) {
		return
	}

	r, err := op(c.Request.Context(), &data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Result(c, http.StatusOK, r, nil)
}
