package catalogsource

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xiebiao/storefront/internal/domain/catalog"
)

// 目录格式
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// productRecord 目录文件中的商品
// 目录是静态资源，价格按数字书写，加载时转换为decimal
type productRecord struct {
	ID          uint    `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
	ImageURL    string  `json:"imageUrl" yaml:"imageUrl"`
	Stock       int     `json:"stock" yaml:"stock"`
	Category    string  `json:"category" yaml:"category"`
}

// document 目录文档：{ "products": [...] }
type document struct {
	Products []productRecord `json:"products" yaml:"products"`
}

// Decode 解析目录文档并校验
// 任一商品不合法则整个目录不可用，不返回部分目录
func Decode(data []byte, format string) ([]catalog.Product, error) {
	var doc document
	var err error
	switch strings.ToLower(format) {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML, "yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = fmt.Errorf("unsupported catalog format %q", format)
	}
	if err != nil {
		return nil, catalog.ErrCatalogUnavailable.WithCause(err)
	}
	if doc.Products == nil {
		return nil, catalog.ErrCatalogUnavailable.WithCause(fmt.Errorf("missing products"))
	}

	products := make([]catalog.Product, len(doc.Products))
	for i, r := range doc.Products {
		products[i] = catalog.Product{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Price:       decimal.NewFromFloat(r.Price),
			ImageURL:    r.ImageURL,
			Category:    r.Category,
			Stock:       r.Stock,
		}
	}

	if err := catalog.Validate(products); err != nil {
		return nil, catalog.ErrCatalogUnavailable.WithCause(err)
	}
	return products, nil
}
