package dto

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ListProductsQuery 商品列表查询参数
// category可重复（?category=Kitchen&category=Bath）或逗号分隔
type ListProductsQuery struct {
	Category []string `form:"category" example:"Kitchen"`
	MinPrice string   `form:"min_price" binding:"omitempty,numeric" example:"10"`
	MaxPrice string   `form:"max_price" binding:"omitempty,numeric" example:"50"`
}

// Categories 展开逗号分隔的分类
func (q ListProductsQuery) Categories() []string {
	var out []string
	for _, c := range q.Category {
		for _, part := range strings.Split(c, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// PriceRange 解析价格区间，未填写的一端为nil
func (q ListProductsQuery) PriceRange() (minPrice, maxPrice *decimal.Decimal, err error) {
	if q.MinPrice != "" {
		v, err := decimal.NewFromString(q.MinPrice)
		if err != nil {
			return nil, nil, err
		}
		minPrice = &v
	}
	if q.MaxPrice != "" {
		v, err := decimal.NewFromString(q.MaxPrice)
		if err != nil {
			return nil, nil, err
		}
		maxPrice = &v
	}
	return minPrice, maxPrice, nil
}
