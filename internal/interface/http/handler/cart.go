package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/storefront/internal/application/cart"
	"github.com/xiebiao/storefront/internal/interface/http/dto"
	"github.com/xiebiao/storefront/pkg/response"
)

// CartHandler 购物车HTTP处理器
type CartHandler struct {
	getCart    *appcart.GetCartUseCase
	addItem    *appcart.AddItemUseCase
	removeItem *appcart.RemoveItemUseCase
	updateItem *appcart.UpdateItemUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(
	getCart *appcart.GetCartUseCase,
	addItem *appcart.AddItemUseCase,
	removeItem *appcart.RemoveItemUseCase,
	updateItem *appcart.UpdateItemUseCase,
) *CartHandler {
	return &CartHandler{
		getCart:    getCart,
		addItem:    addItem,
		removeItem: removeItem,
		updateItem: updateItem,
	}
}

// GetCart 查看购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Success      200 {object} response.Response{data=appcart.View}
// @Router       /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.getCart.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// AddItem 加入购物车
// @Summary      加入购物车
// @Description  请求数量超过剩余库存时按剩余截断（clamped=true），剩余为0时返回库存不足
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Param        request body dto.AddItemRequest true "商品与数量"
// @Success      200 {object} response.Response{data=appcart.AddItemResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "商品不存在"
// @Failure      409 {object} response.Response "库存不足 / 结算处理中"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.addItem.Execute(c.Request.Context(), appcart.AddItemRequest{
		ProductID: req.ProductID,
		Quantity:  *req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateItem 修改数量
// @Summary      修改购物车商品数量
// @Description  数量下限为1；增加时按剩余库存批准，剩余为0时返回库存不足
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Param        id      path int                   true "商品ID"
// @Param        request body dto.UpdateItemRequest true "新数量"
// @Success      200 {object} response.Response{data=appcart.UpdateItemResponse}
// @Failure      409 {object} response.Response "库存不足 / 结算处理中"
// @Router       /api/v1/cart/items/{id} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.updateItem.Execute(c.Request.Context(), appcart.UpdateItemRequest{
		ProductID: id,
		Quantity:  *req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RemoveItem 删除购物车商品
// @Summary      删除购物车商品
// @Description  件数全部归还库存；商品不在购物车中时removed=false
// @Tags         购物车
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=appcart.RemoveItemResponse}
// @Router       /api/v1/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	result, err := h.removeItem.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
