package handler

import (
	"github.com/gin-gonic/gin"

	appcheckout "github.com/xiebiao/storefront/internal/application/checkout"
	"github.com/xiebiao/storefront/internal/interface/http/dto"
	"github.com/xiebiao/storefront/pkg/response"
)

// CheckoutHandler 结算HTTP处理器
type CheckoutHandler struct {
	quote *appcheckout.QuoteUseCase
	pay   *appcheckout.PayUseCase
}

// NewCheckoutHandler 创建结算处理器
func NewCheckoutHandler(quote *appcheckout.QuoteUseCase, pay *appcheckout.PayUseCase) *CheckoutHandler {
	return &CheckoutHandler{
		quote: quote,
		pay:   pay,
	}
}

// Quote 结算报价
// @Summary      结算报价
// @Tags         结算
// @Produce      json
// @Success      200 {object} response.Response{data=appcheckout.Quote}
// @Failure      409 {object} response.Response "购物车为空"
// @Router       /api/v1/checkout/quote [post]
func (h *CheckoutHandler) Quote(c *gin.Context) {
	result, err := h.quote.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Pay 模拟支付
// @Summary      模拟支付
// @Description  进入处理状态，等待模拟支付完成后清空购物车；库存不归还
// @Tags         结算
// @Accept       json
// @Produce      json
// @Param        request body dto.PayRequest true "支付方式"
// @Success      200 {object} response.Response{data=appcheckout.Receipt}
// @Failure      409 {object} response.Response "购物车为空 / 未选择支付方式 / 处理中"
// @Router       /api/v1/checkout [post]
func (h *CheckoutHandler) Pay(c *gin.Context) {
	var req dto.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	receipt, err := h.pay.Execute(c.Request.Context(), appcheckout.PayRequest{Method: req.Method})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, receipt)
}
