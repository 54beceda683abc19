package catalog

import (
	"context"

	"golang.org/x/text/currency"

	"github.com/xiebiao/storefront/internal/application/stock"
	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// GetProductUseCase 商品详情
type GetProductUseCase struct {
	loader catalog.Loader
	ensure *stock.EnsureLedgerUseCase
	unit   currency.Unit
}

// NewGetProductUseCase 创建详情查询用例
func NewGetProductUseCase(loader catalog.Loader, ensure *stock.EnsureLedgerUseCase, unit currency.Unit) *GetProductUseCase {
	return &GetProductUseCase{
		loader: loader,
		ensure: ensure,
		unit:   unit,
	}
}

// Execute 按ID查询商品，不存在返回ErrProductNotFound
func (uc *GetProductUseCase) Execute(ctx context.Context, id uint) (item *ProductItem, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetProduct")
	defer func() { tracing.EndSpan(span, err) }()

	products, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	p, ok := catalog.Find(products, id)
	if !ok {
		return nil, catalog.ErrProductNotFound
	}

	l, _, err := uc.ensure.Execute(ctx, products)
	if err != nil {
		return nil, err
	}

	result := toProductItem(p, l, uc.unit)
	return &result, nil
}
