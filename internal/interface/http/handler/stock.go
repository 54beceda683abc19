package handler

import (
	"github.com/gin-gonic/gin"

	appstock "github.com/xiebiao/storefront/internal/application/stock"
	"github.com/xiebiao/storefront/internal/interface/http/dto"
	"github.com/xiebiao/storefront/pkg/response"
)

// StockHandler 库存HTTP处理器
type StockHandler struct {
	getStock   *appstock.GetStockUseCase
	resetStock *appstock.ResetStockUseCase
}

// NewStockHandler 创建库存处理器
func NewStockHandler(getStock *appstock.GetStockUseCase, resetStock *appstock.ResetStockUseCase) *StockHandler {
	return &StockHandler{
		getStock:   getStock,
		resetStock: resetStock,
	}
}

// GetStock 库存总览
// @Summary      库存总览
// @Tags         库存
// @Produce      json
// @Success      200 {object} response.Response{data=appstock.StockResponse}
// @Router       /api/v1/stock [get]
func (h *StockHandler) GetStock(c *gin.Context) {
	result, err := h.getStock.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ResetStock 重置库存账本
// @Summary      重置库存账本
// @Description  按目录基础库存减去当前购物车重新推导账本，会覆盖其他上下文的预留，需要confirm=true
// @Tags         库存
// @Accept       json
// @Produce      json
// @Param        request body dto.ResetStockRequest true "确认"
// @Success      200 {object} response.Response{data=appstock.ResetStockResponse}
// @Failure      409 {object} response.Response "未确认"
// @Router       /api/v1/stock/reset [post]
func (h *StockHandler) ResetStock(c *gin.Context) {
	var req dto.ResetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.resetStock.Execute(c.Request.Context(), appstock.ResetStockRequest{Confirm: req.Confirm})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
