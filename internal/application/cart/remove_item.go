package cart

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// RemoveItemUseCase 从购物车删除商品，件数全部归还库存
// 商品不在购物车中时是幂等的no-op
type RemoveItemUseCase struct {
	engine  *reservation.Engine
	carts   *cart.Store
	pricing Pricing
}

// NewRemoveItemUseCase 创建删除用例
func NewRemoveItemUseCase(engine *reservation.Engine, carts *cart.Store, pricing Pricing) *RemoveItemUseCase {
	return &RemoveItemUseCase{
		engine:  engine,
		carts:   carts,
		pricing: pricing,
	}
}

// RemoveItemResponse 删除结果
type RemoveItemResponse struct {
	Removed bool `json:"removed"`
	Cart    View `json:"cart"`
}

// Execute 执行删除
func (uc *RemoveItemUseCase) Execute(ctx context.Context, productID uint) (resp *RemoveItemResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "RemoveItem")
	defer func() { tracing.EndSpan(span, err) }()

	removed, err := uc.engine.RemoveFromCart(ctx, productID)
	if err != nil {
		return nil, err
	}

	lines, err := uc.carts.Get(ctx)
	if err != nil {
		return nil, err
	}

	return &RemoveItemResponse{
		Removed: removed,
		Cart:    NewView(lines, uc.pricing),
	}, nil
}
