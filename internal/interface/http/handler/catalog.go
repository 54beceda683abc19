package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/storefront/internal/application/catalog"
	"github.com/xiebiao/storefront/internal/interface/http/dto"
	"github.com/xiebiao/storefront/pkg/response"
)

// CatalogHandler 商品目录HTTP处理器
type CatalogHandler struct {
	listProducts *appcatalog.ListProductsUseCase
	getProduct   *appcatalog.GetProductUseCase
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(listProducts *appcatalog.ListProductsUseCase, getProduct *appcatalog.GetProductUseCase) *CatalogHandler {
	return &CatalogHandler{
		listProducts: listProducts,
		getProduct:   getProduct,
	}
}

// ListProducts 商品列表
// @Summary      商品列表
// @Description  返回目录商品及可用库存，支持分类和价格区间过滤；账本不存在时按目录初始化
// @Tags         商品
// @Produce      json
// @Param        category  query  []string  false  "分类（可重复或逗号分隔）"
// @Param        min_price query  string    false  "最低价格"
// @Param        max_price query  string    false  "最高价格"
// @Success      200 {object} response.Response{data=appcatalog.ListProductsResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      500 {object} response.Response "商品目录不可用"
// @Router       /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	// 1. 参数绑定
	var query dto.ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}
	minPrice, maxPrice, err := query.PriceRange()
	if err != nil {
		bindError(c, err)
		return
	}

	// 2. 调用用例
	result, err := h.listProducts.Execute(c.Request.Context(), appcatalog.ListProductsRequest{
		Categories: query.Categories(),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetProduct 商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Param        id  path  int  true  "商品ID"
// @Success      200 {object} response.Response{data=appcatalog.ProductItem}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	item, err := h.getProduct.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, item)
}
