// Package integration 针对运行中的API进程的集成测试
//
// 运行方式：
//
//	go run ./cmd/api &
//	go test ./test/integration -v
//
// 服务不可达或使用-short时跳过。STOREFRONT_BASE_URL可覆盖默认地址。
package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：测试辅助工具
// 封装HTTP请求和JSON解析，让测试聚焦在业务断言上

const (
	// DefaultBaseURL API基础URL
	DefaultBaseURL = "http://localhost:8080"
	// Timeout HTTP请求超时时间（结算默认处理2秒）
	Timeout = 10 * time.Second
)

var (
	client = &http.Client{Timeout: Timeout}

	probeOnce sync.Once
	probeErr  error
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ProductData 商品列表项
type ProductData struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Stock     int    `json:"stock"`
	Available int    `json:"available"`
	SoldOut   bool   `json:"sold_out"`
}

// ProductListData 商品列表
type ProductListData struct {
	List       []ProductData `json:"list"`
	Total      int           `json:"total"`
	Categories []string      `json:"categories"`
}

// CartLineData 购物车行
type CartLineData struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CartData 购物车视图
type CartData struct {
	Lines        []CartLineData `json:"lines"`
	Count        int            `json:"count"`
	TotalDisplay string         `json:"total_display"`
}

// AddItemData 加购结果
type AddItemData struct {
	Added     int      `json:"added"`
	Quantity  int      `json:"quantity"`
	Remaining int      `json:"remaining"`
	Clamped   bool     `json:"clamped"`
	Cart      CartData `json:"cart"`
}

// ReceiptData 支付回执
type ReceiptData struct {
	ID           string `json:"id"`
	Method       string `json:"method"`
	Count        int    `json:"count"`
	TotalDisplay string `json:"total_display"`
}

// BaseURL 服务地址
func BaseURL() string {
	if u := os.Getenv("STOREFRONT_BASE_URL"); u != "" {
		return u
	}
	return DefaultBaseURL
}

// RequireServer 服务不可达时跳过
func RequireServer(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("集成测试需要运行中的服务，-short跳过")
	}
	probeOnce.Do(func() {
		resp, err := client.Get(BaseURL() + "/ping")
		if err != nil {
			probeErr = err
			return
		}
		resp.Body.Close()
	})
	if probeErr != nil {
		t.Skipf("服务不可达（%s）: %v", BaseURL(), probeErr)
	}
}

// Do 发送请求并解析统一响应
//
// 教学说明：
// - 使用require进行断言，失败会立即停止
// - 只能在测试goroutine中调用；并发场景使用DoRaw
func Do(t *testing.T, method, path string, body interface{}) *Response {
	t.Helper()
	resp, err := DoRaw(method, path, body)
	require.NoError(t, err)
	return resp
}

// DoRaw 发送请求，不做断言（可在任意goroutine中调用）
func DoRaw(method, path string, body interface{}) (*Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, BaseURL()+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result Response
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Decode 解析Data字段
func Decode[T any](t *testing.T, resp *Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v), "解析响应数据失败: %s", string(resp.Data))
	return v
}

// ResetShop 清空购物车并按基础库存重置账本，每个测试从干净状态开始
func ResetShop(t *testing.T) ProductListData {
	t.Helper()

	cart := Decode[CartData](t, Do(t, http.MethodGet, "/api/v1/cart", nil))
	for _, line := range cart.Lines {
		resp := Do(t, http.MethodDelete, "/api/v1/cart/items/"+itoa(line.ProductID), nil)
		require.Equal(t, 0, resp.Code, resp.Message)
	}

	resp := Do(t, http.MethodPost, "/api/v1/stock/reset", map[string]bool{"confirm": true})
	require.Equal(t, 0, resp.Code, resp.Message)

	return Decode[ProductListData](t, Do(t, http.MethodGet, "/api/v1/products", nil))
}

// InStock 返回有货且库存最少的商品
func InStock(t *testing.T, products ProductListData) ProductData {
	t.Helper()
	var picked *ProductData
	for i, p := range products.List {
		if p.Available <= 0 {
			continue
		}
		if picked == nil || p.Available < picked.Available {
			picked = &products.List[i]
		}
	}
	require.NotNil(t, picked, "目录中没有有货的商品")
	return *picked
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
