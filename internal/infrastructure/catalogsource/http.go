package catalogsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/pkg/circuitbreaker"
)

// maxCatalogSize 目录响应体上限
const maxCatalogSize = 8 << 20

// HTTPLoader 从远程静态资源加载目录
// 设计说明:
// 1. 请求通过熔断器：远程目录连续失败后快速失败，不拖慢每次会话启动
// 2. 单次请求受timeout限制
type HTTPLoader struct {
	url     string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewHTTPLoader 创建远程目录加载器
func NewHTTPLoader(url string, timeout time.Duration, breaker *circuitbreaker.CircuitBreaker) *HTTPLoader {
	return &HTTPLoader{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

func (l *HTTPLoader) Load(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product

	err := l.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := l.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, l.url)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogSize))
		if err != nil {
			return err
		}

		products, err = Decode(data, FormatJSON)
		return err
	})
	if err != nil {
		return nil, catalog.ErrCatalogUnavailable.WithCause(err)
	}
	return products, nil
}
