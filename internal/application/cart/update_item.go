package cart

import (
	"context"
	"fmt"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// UpdateItemUseCase 修改购物车中商品的数量
// 教学要点:
// 1. 数量下限为1，删除走RemoveItem
// 2. 增加时按剩余库存批准，剩余为0才报库存不足
// 3. 减少总是成功
type UpdateItemUseCase struct {
	engine  *reservation.Engine
	carts   *cart.Store
	pricing Pricing
}

// NewUpdateItemUseCase 创建改量用例
func NewUpdateItemUseCase(engine *reservation.Engine, carts *cart.Store, pricing Pricing) *UpdateItemUseCase {
	return &UpdateItemUseCase{
		engine:  engine,
		carts:   carts,
		pricing: pricing,
	}
}

// UpdateItemRequest 改量请求
type UpdateItemRequest struct {
	ProductID uint
	Quantity  int
}

// UpdateItemResponse 改量结果
type UpdateItemResponse struct {
	Found    bool   `json:"found"`
	Quantity int    `json:"quantity"`
	Granted  int    `json:"granted"`
	Returned int    `json:"returned"`
	Message  string `json:"message,omitempty"`
	Cart     View   `json:"cart"`
}

// Execute 执行改量
func (uc *UpdateItemUseCase) Execute(ctx context.Context, req UpdateItemRequest) (resp *UpdateItemResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateItem")
	defer func() { tracing.EndSpan(span, err) }()

	result, err := uc.engine.UpdateQuantity(ctx, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}

	lines, err := uc.carts.Get(ctx)
	if err != nil {
		return nil, err
	}

	resp = &UpdateItemResponse{
		Found:    result.Found,
		Quantity: result.Quantity,
		Granted:  result.Granted,
		Returned: result.Returned,
		Cart:     NewView(lines, uc.pricing),
	}
	// 请求增加的件数超过剩余时只批准了一部分
	if result.Granted > 0 && result.Quantity < req.Quantity {
		resp.Message = fmt.Sprintf("库存不足，仅增加%d件", result.Granted)
	}
	return resp, nil
}
