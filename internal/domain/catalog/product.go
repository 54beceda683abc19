package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product 商品（只读参考数据）
// DDD设计说明:
// 1. 由目录加载器一次性加载，加载后不可变
// 2. Stock是目录发布时的基础库存（baseStock），不是剩余库存
// 3. 剩余库存由库存账本（ledger）维护，二者不要混用
// 4. 价格使用decimal避免浮点数精度问题
type Product struct {
	ID          uint
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Category    string
	Stock       int // 基础库存
}

// Validate 校验商品数据
// 业务规则：ID>0、价格>=0、基础库存>=0
func (p Product) Validate() error {
	if p.ID == 0 {
		return fmt.Errorf("商品ID必须大于0")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("商品%d价格不能为负数", p.ID)
	}
	if p.Stock < 0 {
		return fmt.Errorf("商品%d库存不能为负数", p.ID)
	}
	return nil
}

// Validate 校验整个目录
// 任一商品不合法或ID重复都会让整个目录失效（不使用部分目录）
func Validate(products []Product) error {
	seen := make(map[uint]struct{}, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("商品ID重复: %d", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Find 按ID查找商品
func Find(products []Product, id uint) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Filter 商品筛选条件
// 零值表示不限制
type Filter struct {
	Categories []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// Match 判断商品是否满足筛选条件
// 分类比较忽略大小写，价格区间为闭区间
func (f Filter) Match(p Product) bool {
	if len(f.Categories) > 0 {
		matched := false
		for _, c := range f.Categories {
			if strings.EqualFold(strings.TrimSpace(c), p.Category) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// Apply 按筛选条件过滤，保持目录原有顺序
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Categories 返回目录中出现的分类（按首次出现顺序去重）
func Categories(products []Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
