package catalog

import "context"

// Loader 商品目录加载器（依赖倒置，infrastructure层实现）
// 1. 失败统一返回ErrCatalogUnavailable（可携带内部原因）
// 2. 只读：加载器从不接触库存账本和购物车，是否用目录初始化账本由调用方决定
type Loader interface {
	Load(ctx context.Context) ([]Product, error)
}

// LoaderFunc 函数适配器
type LoaderFunc func(ctx context.Context) ([]Product, error)

func (f LoaderFunc) Load(ctx context.Context) ([]Product, error) {
	return f(ctx)
}
