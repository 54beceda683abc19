package catalogsource

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/xiebiao/storefront/internal/domain/catalog"
)

// Cached 每个执行上下文只加载一次目录
// 1. 并发的首次加载合并为一次请求（singleflight）
// 2. 加载失败不缓存，下一次调用重新请求
// 3. Refresh按需重新加载
type Cached struct {
	loader catalog.Loader
	group  singleflight.Group

	mu       sync.RWMutex
	products []catalog.Product
	loaded   bool
}

// NewCached 包装一个加载器
func NewCached(loader catalog.Loader) *Cached {
	return &Cached{loader: loader}
}

func (c *Cached) Load(ctx context.Context) ([]catalog.Product, error) {
	c.mu.RLock()
	if c.loaded {
		products := c.products
		c.mu.RUnlock()
		return clone(products), nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("catalog", func() (interface{}, error) {
		products, err := c.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.products, c.loaded = products, true
		c.mu.Unlock()
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]catalog.Product)), nil
}

// Refresh 丢弃缓存并重新加载
// 重新加载失败时保留旧目录
func (c *Cached) Refresh(ctx context.Context) ([]catalog.Product, error) {
	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		products, err := c.loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.products, c.loaded = products, true
		c.mu.Unlock()
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]catalog.Product)), nil
}

func clone(products []catalog.Product) []catalog.Product {
	out := make([]catalog.Product, len(products))
	copy(out, products)
	return out
}
