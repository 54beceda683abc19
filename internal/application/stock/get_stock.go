package stock

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// GetStockUseCase 库存总览
type GetStockUseCase struct {
	loader catalog.Loader
	ensure *EnsureLedgerUseCase
	carts  *cart.Store
}

// NewGetStockUseCase 创建库存查询用例
func NewGetStockUseCase(loader catalog.Loader, ensure *EnsureLedgerUseCase, carts *cart.Store) *GetStockUseCase {
	return &GetStockUseCase{
		loader: loader,
		ensure: ensure,
		carts:  carts,
	}
}

// StockItem 单个商品的库存情况
// 单个上下文内 Remaining + InCart == BaseStock；
// 多个上下文并发修改后可能不相等，此时InSync为false
type StockItem struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	BaseStock int    `json:"base_stock"`
	Remaining int    `json:"remaining"`
	InCart    int    `json:"in_cart"`
	InSync    bool   `json:"in_sync"`
}

// StockResponse 库存总览响应
type StockResponse struct {
	Items  []StockItem `json:"items"`
	Seeded bool        `json:"seeded"`
}

// Execute 执行库存查询
func (uc *GetStockUseCase) Execute(ctx context.Context) (resp *StockResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetStock")
	defer func() { tracing.EndSpan(span, err) }()

	products, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	current, seeded, err := uc.ensure.Execute(ctx, products)
	if err != nil {
		return nil, err
	}
	lines, err := uc.carts.Get(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]StockItem, len(products))
	for i, p := range products {
		remaining, ok := current.Remaining(p.ID)
		if !ok {
			remaining = p.Stock
		}
		inCart := lines.Quantity(p.ID)
		items[i] = StockItem{
			ProductID: p.ID,
			Name:      p.Name,
			BaseStock: p.Stock,
			Remaining: remaining,
			InCart:    inCart,
			InSync:    remaining+inCart == p.Stock,
		}
	}

	return &StockResponse{Items: items, Seeded: seeded}, nil
}
