package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/xiebiao/storefront/internal/application/stock"
	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// ListProductsUseCase 商品列表查询用例
// 设计说明:
// 1. 目录来自Loader（已缓存），可用库存来自账本
// 2. 相当于"打开商品页"：账本不存在时先初始化
// 3. 支持按分类和价格区间过滤
type ListProductsUseCase struct {
	loader catalog.Loader
	ensure *stock.EnsureLedgerUseCase
	unit   currency.Unit
}

// NewListProductsUseCase 创建列表查询用例
func NewListProductsUseCase(loader catalog.Loader, ensure *stock.EnsureLedgerUseCase, unit currency.Unit) *ListProductsUseCase {
	return &ListProductsUseCase{
		loader: loader,
		ensure: ensure,
		unit:   unit,
	}
}

// ListProductsRequest 列表查询请求
type ListProductsRequest struct {
	Categories []string         // 为空表示不过滤
	MinPrice   *decimal.Decimal // 含
	MaxPrice   *decimal.Decimal // 含
}

// ListProductsResponse 列表查询响应
type ListProductsResponse struct {
	List       []ProductItem `json:"list"`
	Total      int           `json:"total"`
	Categories []string      `json:"categories"` // 目录中全部分类，用于过滤面板
}

// Execute 执行列表查询
func (uc *ListProductsUseCase) Execute(ctx context.Context, req ListProductsRequest) (resp *ListProductsResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ListProducts")
	defer func() { tracing.EndSpan(span, err) }()

	// 1. 加载目录，失败时整页不可用
	products, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	// 2. 确保账本存在
	l, _, err := uc.ensure.Execute(ctx, products)
	if err != nil {
		return nil, err
	}

	// 3. 过滤
	filter := catalog.Filter{
		Categories: req.Categories,
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
	}
	matched := filter.Apply(products)

	// 4. 转换为DTO
	list := make([]ProductItem, len(matched))
	for i, p := range matched {
		list[i] = toProductItem(p, l, uc.unit)
	}

	return &ListProductsResponse{
		List:       list,
		Total:      len(list),
		Categories: catalog.Categories(products),
	}, nil
}
