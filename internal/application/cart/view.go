package cart

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/pkg/money"
)

const tracerName = "storefront/cart"

// Pricing 金额计算参数（来自checkout配置）
type Pricing struct {
	ShippingFee decimal.Decimal
	Currency    currency.Unit
}

// LineItem 购物车行DTO
type LineItem struct {
	ProductID   uint            `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// View 购物车DTO（含汇总）
type View struct {
	Lines        []LineItem      `json:"lines"`
	Count        int             `json:"count"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
}

// NewView 把领域购物车转换为DTO
// 金额按币种精度舍入
func NewView(c cart.Cart, pricing Pricing) View {
	s := c.Summarize(pricing.ShippingFee)
	unit := pricing.Currency

	lines := make([]LineItem, len(c))
	for i, l := range c {
		lines[i] = LineItem{
			ProductID:   l.ProductID,
			Name:        l.Name,
			Description: l.Description,
			Price:       l.Price,
			ImageURL:    l.ImageURL,
			Quantity:    l.Quantity,
			LineTotal:   money.Round(l.Total(), unit),
		}
	}

	return View{
		Lines:        lines,
		Count:        s.Count,
		Subtotal:     money.Round(s.Subtotal, unit),
		Shipping:     money.Round(s.Shipping, unit),
		Total:        money.Round(s.Total, unit),
		TotalDisplay: money.Format(s.Total, unit),
	}
}
