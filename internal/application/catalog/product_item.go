package catalog

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/ledger"
	"github.com/xiebiao/storefront/pkg/money"
)

const tracerName = "storefront/catalog"

// ProductItem 商品展示DTO
// Available是账本剩余；账本没有该商品时显示基础库存
type ProductItem struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	PriceDisplay string          `json:"price_display"`
	ImageURL     string          `json:"image_url"`
	Category     string          `json:"category"`
	Stock        int             `json:"stock"`
	Available    int             `json:"available"`
	SoldOut      bool            `json:"sold_out"`
}

func toProductItem(p catalog.Product, l ledger.Ledger, unit currency.Unit) ProductItem {
	available, ok := l.Remaining(p.ID)
	if !ok {
		available = p.Stock
	}
	return ProductItem{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		PriceDisplay: money.Format(p.Price, unit),
		ImageURL:     p.ImageURL,
		Category:     p.Category,
		Stock:        p.Stock,
		Available:    available,
		SoldOut:      available <= 0,
	}
}
