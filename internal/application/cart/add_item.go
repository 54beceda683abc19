package cart

import (
	"context"
	"fmt"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// AddItemUseCase 加入购物车用例
// 教学要点:
// 1. 商品信息以目录为准，调用方只传ID和数量（防止篡改价格）
// 2. 请求数量超过剩余库存时按剩余截断，而不是整体失败
// 3. 截断必须明确告诉用户（Clamped + Message）
type AddItemUseCase struct {
	loader  catalog.Loader
	engine  *reservation.Engine
	carts   *cart.Store
	pricing Pricing
}

// NewAddItemUseCase 创建加购用例
func NewAddItemUseCase(loader catalog.Loader, engine *reservation.Engine, carts *cart.Store, pricing Pricing) *AddItemUseCase {
	return &AddItemUseCase{
		loader:  loader,
		engine:  engine,
		carts:   carts,
		pricing: pricing,
	}
}

// AddItemRequest 加购请求
type AddItemRequest struct {
	ProductID uint
	Quantity  int
}

// AddItemResponse 加购结果
type AddItemResponse struct {
	ProductID uint   `json:"product_id"`
	Requested int    `json:"requested"`
	Added     int    `json:"added"`
	Quantity  int    `json:"quantity"`  // 购物车中该商品的数量
	Remaining int    `json:"remaining"` // 账本剩余
	Clamped   bool   `json:"clamped"`
	Message   string `json:"message"`
	Cart      View   `json:"cart"`
}

// Execute 执行加购
func (uc *AddItemUseCase) Execute(ctx context.Context, req AddItemRequest) (resp *AddItemResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AddItem")
	defer func() { tracing.EndSpan(span, err) }()

	// 1. 查找商品
	products, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := catalog.Find(products, req.ProductID)
	if !ok {
		return nil, catalog.ErrProductNotFound
	}

	// 2. 预留
	result, err := uc.engine.AddToCart(ctx, p, req.Quantity)
	if err != nil {
		return nil, err
	}

	// 3. 重新读取购物车用于展示
	lines, err := uc.carts.Get(ctx)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("已加入%d件", result.Added)
	if result.Clamped() {
		message = fmt.Sprintf("库存不足，仅加入%d件（请求%d件）", result.Added, result.Requested)
	}

	return &AddItemResponse{
		ProductID: p.ID,
		Requested: result.Requested,
		Added:     result.Added,
		Quantity:  result.Quantity,
		Remaining: result.Remaining,
		Clamped:   result.Clamped(),
		Message:   message,
		Cart:      NewView(lines, uc.pricing),
	}, nil
}
