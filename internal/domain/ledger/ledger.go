package ledger

import (
	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/catalog"
)

// Ledger 库存账本：productID → 剩余可预留件数
// 设计说明:
// 1. "不存在"和"空账本"是两种状态：Store.Get用found=false表示前者
// 2. 账本只能整体读写，单个上下文内的读-改-写因此是原子的
type Ledger map[uint]int

// Remaining 剩余件数，ok=false表示账本里没有这个商品
func (l Ledger) Remaining(productID uint) (int, bool) {
	n, ok := l[productID]
	return n, ok
}

// Clone 拷贝账本（nil返回空账本）
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for id, n := range l {
		out[id] = n
	}
	return out
}

// Seed 按目录基础库存生成账本
func Seed(products []catalog.Product) Ledger {
	l := make(Ledger, len(products))
	for _, p := range products {
		l[p.ID] = p.Stock
	}
	return l
}

// Derive 由目录和当前购物车重新推导账本
// 1. 目录中的商品：max(0, 基础库存 - 购物车数量)
// 2. 购物车里有但目录里已经没有的商品：0
func Derive(products []catalog.Product, c cart.Cart) Ledger {
	l := make(Ledger, len(products)+len(c))
	for _, line := range c {
		l[line.ProductID] = 0
	}
	for _, p := range products {
		remaining := p.Stock - c.Quantity(p.ID)
		if remaining < 0 {
			remaining = 0
		}
		l[p.ID] = remaining
	}
	return l
}
