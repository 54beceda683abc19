package catalogsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/pkg/circuitbreaker"
)

const catalogJSON = `{"products":[
	{"id":1,"name":"Bamboo Toothbrush","description":"Soft","price":3.5,"imageUrl":"a.jpg","stock":5,"category":"Oral Care"},
	{"id":2,"name":"Cast Iron Skillet","description":"Heavy","price":29.99,"imageUrl":"b.jpg","stock":2,"category":"Kitchen"}
]}`

func TestDecode(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		products, err := Decode([]byte(catalogJSON), FormatJSON)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "29.99", products[1].Price.String())
		assert.Equal(t, "Kitchen", products[1].Category)
		assert.Equal(t, 5, products[0].Stock)
	})

	tests := []struct {
		name string
		data string
	}{
		{"不是JSON", `{"products":`},
		{"缺少products", `{}`},
		{"负库存", `{"products":[{"id":1,"price":1,"stock":-1}]}`},
		{"ID重复", `{"products":[{"id":1,"price":1,"stock":1},{"id":1,"price":2,"stock":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), FormatJSON)
			assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
		})
	}
}

func TestFileLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("YAML", func(t *testing.T) {
		products, err := NewFileLoader("testdata/products.yaml").Load(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "3.5", products[0].Price.String())
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "products.json")
		require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o644))
		products, err := NewFileLoader(path).Load(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := NewFileLoader(filepath.Join(t.TempDir(), "missing.json")).Load(ctx)
		assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
	})
}

func TestHTTPLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("成功", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(catalogJSON))
		}))
		defer srv.Close()

		breaker := circuitbreaker.NewCircuitBreaker("catalog-ok", circuitbreaker.DefaultConfig(3, time.Minute))
		products, err := NewHTTPLoader(srv.URL, time.Second, breaker).Load(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("连续失败后熔断", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		breaker := circuitbreaker.NewCircuitBreaker("catalog-down", circuitbreaker.DefaultConfig(2, time.Minute))
		loader := NewHTTPLoader(srv.URL, time.Second, breaker)

		for i := 0; i < 2; i++ {
			_, err := loader.Load(ctx)
			assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
		}

		_, err := loader.Load(ctx)
		assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
		assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
		assert.Equal(t, int32(2), hits.Load(), "熔断后不再请求远程目录")
	})
}

func TestCached(t *testing.T) {
	ctx := context.Background()

	t.Run("只加载一次，并发请求合并", func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		loader := catalog.LoaderFunc(func(ctx context.Context) ([]catalog.Product, error) {
			calls.Add(1)
			<-release
			return []catalog.Product{{ID: 1, Stock: 5}}, nil
		})
		cached := NewCached(loader)

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				products, err := cached.Load(ctx)
				assert.NoError(t, err)
				assert.Len(t, products, 1)
			}()
		}
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		_, err := cached.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())

		_, err = cached.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("失败不缓存", func(t *testing.T) {
		var calls atomic.Int32
		loader := catalog.LoaderFunc(func(ctx context.Context) ([]catalog.Product, error) {
			if calls.Add(1) == 1 {
				return nil, catalog.ErrCatalogUnavailable.WithCause(errors.New("timeout"))
			}
			return []catalog.Product{{ID: 1}}, nil
		})
		cached := NewCached(loader)

		_, err := cached.Load(ctx)
		assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)

		products, err := cached.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})

	t.Run("返回副本", func(t *testing.T) {
		cached := NewCached(catalog.LoaderFunc(func(ctx context.Context) ([]catalog.Product, error) {
			return []catalog.Product{{ID: 1, Name: "a"}}, nil
		}))
		products, err := cached.Load(ctx)
		require.NoError(t, err)
		products[0].Name = "changed"

		again, err := cached.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a", again[0].Name)
	})
}
