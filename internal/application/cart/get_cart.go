package cart

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// GetCartUseCase 查看购物车
type GetCartUseCase struct {
	carts   *cart.Store
	pricing Pricing
}

// NewGetCartUseCase 创建查看购物车用例
func NewGetCartUseCase(carts *cart.Store, pricing Pricing) *GetCartUseCase {
	return &GetCartUseCase{
		carts:   carts,
		pricing: pricing,
	}
}

// Execute 返回当前购物车（不存在或损坏时为空）
func (uc *GetCartUseCase) Execute(ctx context.Context) (view *View, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetCart")
	defer func() { tracing.EndSpan(span, err) }()

	lines, err := uc.carts.Get(ctx)
	if err != nil {
		return nil, err
	}
	v := NewView(lines, uc.pricing)
	return &v, nil
}
