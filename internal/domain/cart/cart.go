package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xiebiao/storefront/internal/domain/catalog"
)

// Line 购物车行
// 名称、描述、价格、图片是加入购物车时的商品快照，目录之后变化也不会同步
type Line struct {
	ProductID   uint
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Quantity    int // 始终>0，数量为0的行直接删除
}

// NewLine 根据商品创建购物车行（快照）
func NewLine(p catalog.Product, quantity int) Line {
	return Line{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Quantity:    quantity,
	}
}

// Total 行小计
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart 购物车（有序，按ProductID唯一）
// 设计说明:
// 1. 值语义：所有修改方法返回新的Cart，不修改接收者
// 2. 这样预留引擎可以先计算出新状态，写入失败时旧状态保持不变
type Cart []Line

func (c Cart) index(productID uint) int {
	for i, l := range c {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Find 查找购物车行
func (c Cart) Find(productID uint) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c[i], true
	}
	return Line{}, false
}

// Quantity 购物车中某商品的数量（不存在返回0）
func (c Cart) Quantity(productID uint) int {
	l, _ := c.Find(productID)
	return l.Quantity
}

// Clone 深拷贝（非nil）
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// With 加入商品：已有行则合并数量，否则在末尾追加快照行
func (c Cart) With(p catalog.Product, quantity int) Cart {
	out := c.Clone()
	if i := out.index(p.ID); i >= 0 {
		out[i].Quantity += quantity
		return out
	}
	return append(out, NewLine(p, quantity))
}

// Without 删除商品行（不存在时原样返回副本）
func (c Cart) Without(productID uint) Cart {
	out := make(Cart, 0, len(c))
	for _, l := range c {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	return out
}

// WithQuantity 设置某行数量（不存在时原样返回副本）
func (c Cart) WithQuantity(productID uint, quantity int) Cart {
	out := c.Clone()
	if i := out.index(productID); i >= 0 {
		out[i].Quantity = quantity
	}
	return out
}

// Count 商品总件数
func (c Cart) Count() int {
	n := 0
	for _, l := range c {
		n += l.Quantity
	}
	return n
}

// Subtotal 商品金额合计 Σ price·quantity
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c {
		total = total.Add(l.Total())
	}
	return total
}

// Summary 购物车汇总
type Summary struct {
	Count    int
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Summarize 计算汇总，空购物车不收运费
func (c Cart) Summarize(shippingFee decimal.Decimal) Summary {
	s := Summary{
		Count:    c.Count(),
		Subtotal: c.Subtotal(),
		Shipping: decimal.Zero,
	}
	if len(c) > 0 {
		s.Shipping = shippingFee
	}
	s.Total = s.Subtotal.Add(s.Shipping)
	return s
}
