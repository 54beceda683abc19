package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/reservation"
)

const catalogJSON = `{"products":[
	{"id":1,"name":"Bamboo Toothbrush","price":3.5,"stock":5,"category":"Oral Care"},
	{"id":2,"name":"Cast Iron Skillet","price":29.99,"stock":2,"category":"Kitchen"}
]}`

// writeConfig 生成file驱动的配置，同一个配置的多次调用共享一个存储目录
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogJSON), 0o644))

	content := "storage:\n  driver: file\n  dir: " + filepath.Join(dir, "data") + "\n" +
		"catalog:\n  path: " + catalogPath + "\n" +
		"checkout:\n  processing_delay: 1ms\n" +
		"log:\n  level: error\n  output: " + filepath.Join(dir, "cli.log") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute 执行一次命令（一个执行上下文）
func execute(ctx context.Context, cfgPath string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func run(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := execute(context.Background(), cfgPath, args...)
	require.NoError(t, err, out)
	return out
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{
		{"products"}, {"product"}, {"cart", "show"}, {"cart", "add"}, {"cart", "remove"},
		{"cart", "update"}, {"stock", "show"}, {"stock", "reset"}, {"checkout"}, {"watch"},
	} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}

	reset, _, err := cmd.Find([]string{"stock", "reset"})
	require.NoError(t, err)
	yes := reset.Flags().Lookup("yes")
	require.NotNil(t, yes)
	assert.Equal(t, "false", yes.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(context.Background(), writeConfig(t), "--format", "xml", "products")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "无效的输出格式")
}

// TestGolden 多次调用共享file存储，输出与golden文件一致
// 更新golden: go test ./internal/interface/cli -update
func TestGolden(t *testing.T) {
	cfg := writeConfig(t)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	g.Assert(t, "products", []byte(run(t, cfg, "products")))
	g.Assert(t, "products_kitchen_json", []byte(run(t, cfg, "products", "--category", "Kitchen", "--format", "json")))

	run(t, cfg, "cart", "add", "1", "2")
	run(t, cfg, "cart", "add", "2", "1")

	g.Assert(t, "cart", []byte(run(t, cfg, "cart", "show")))
	g.Assert(t, "stock", []byte(run(t, cfg, "stock", "show")))
	t.Log("✓ 跨调用共享账本和购物车")
}

func TestCartCommands(t *testing.T) {
	cfg := writeConfig(t)

	t.Run("超量加入被截断", func(t *testing.T) {
		out := run(t, cfg, "cart", "add", "2", "5")
		assert.Contains(t, out, "库存不足，仅加入2件（请求5件）")
		assert.Contains(t, out, "剩余库存0")
	})

	t.Run("库存为0", func(t *testing.T) {
		_, err := execute(context.Background(), cfg, "cart", "add", "2", "1")
		assert.ErrorIs(t, err, reservation.ErrOutOfStock)
	})

	t.Run("减少数量", func(t *testing.T) {
		out := run(t, cfg, "cart", "update", "2", "1")
		assert.Contains(t, out, "当前数量1")
	})

	t.Run("删除", func(t *testing.T) {
		assert.Contains(t, run(t, cfg, "cart", "remove", "2"), "已删除商品2")
		assert.Contains(t, run(t, cfg, "cart", "remove", "2"), "不在购物车中")
		assert.Contains(t, run(t, cfg, "cart", "show"), "购物车为空")
	})

	t.Run("无效参数", func(t *testing.T) {
		_, err := execute(context.Background(), cfg, "cart", "add", "x", "1")
		assert.ErrorContains(t, err, "无效的商品ID")
		_, err = execute(context.Background(), cfg, "product", "99")
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})
}

func TestStockReset(t *testing.T) {
	cfg := writeConfig(t)
	run(t, cfg, "cart", "add", "1", "2")

	_, err := execute(context.Background(), cfg, "stock", "reset")
	assert.ErrorIs(t, err, reservation.ErrResetNotConfirmed)

	out := run(t, cfg, "stock", "reset", "--yes")
	assert.Contains(t, out, "库存账本已重置")
	assert.Contains(t, out, "1   3")
	assert.Contains(t, out, "2   2")
}

func TestCheckout(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(context.Background(), cfg, "checkout", "--method", "paypal")
	assert.ErrorIs(t, err, reservation.ErrEmptyCart)

	run(t, cfg, "cart", "add", "1", "2")

	_, err = execute(context.Background(), cfg, "checkout")
	assert.ErrorIs(t, err, reservation.ErrPaymentMethodRequired)

	out := run(t, cfg, "checkout", "--method", "paypal")
	assert.Contains(t, out, "应付: USD 57.00")
	assert.Contains(t, out, "支付成功")
	assert.Contains(t, out, "方式: paypal")

	assert.Contains(t, run(t, cfg, "cart", "show"), "购物车为空")
	// 已售出的件数不归还
	assert.Contains(t, run(t, cfg, "product", "1"), "库存: 3")
}

// syncBuffer watch在另一个goroutine中写入
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch(t *testing.T) {
	cfg := writeConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfg, "watch"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// 监听建立前的写入收不到，反复写入直到收到
	assert.Eventually(t, func() bool {
		_, _ = execute(context.Background(), cfg, "cart", "add", "1", "1")
		_, _ = execute(context.Background(), cfg, "cart", "remove", "1")
		return strings.Contains(out.String(), "change kind=storage")
	}, 10*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch未退出")
	}
	assert.Contains(t, out.String(), "监听变更中")
	t.Log("✓ 其他执行上下文的写入以storage信号送达")
}
