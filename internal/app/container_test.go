package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcart "github.com/xiebiao/storefront/internal/application/cart"
	"github.com/xiebiao/storefront/internal/domain/notify"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/memory"
)

const catalogJSON = `{"products":[
	{"id":1,"name":"Bamboo Toothbrush","price":3.5,"stock":5,"category":"Oral Care"},
	{"id":2,"name":"Cast Iron Skillet","price":29.99,"stock":2,"category":"Kitchen"}
]}`

// testConfig 生成使用临时目录的配置
func testConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogJSON), 0o644))

	content := "catalog:\n  path: " + catalogPath + "\n" +
		"storage:\n  dir: " + filepath.Join(dir, "data") + "\n  sqlite_path: " + filepath.Join(dir, "shop.db") + "\n" +
		"checkout:\n  processing_delay: 1ms\n" + extra
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	return cfg
}

func TestNew_Drivers(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{config.DriverMemory, config.DriverFile, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, "")
			cfg.Storage.Driver = driver

			c, err := New(ctx, cfg, WithLogger(zap.NewNop()))
			require.NoError(t, err)
			defer c.Close()

			seeded, err := c.Bootstrap(ctx)
			require.NoError(t, err)
			assert.True(t, seeded)

			_, err = c.AddItem.Execute(ctx, appcart.AddItemRequest{ProductID: 2, Quantity: 1})
			require.NoError(t, err)

			stock, err := c.GetStock.Execute(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, stock.Items[1].Remaining)
			assert.Equal(t, 1, stock.Items[1].InCart)
		})
	}
}

func TestNew_LockUnsupported(t *testing.T) {
	cfg := testConfig(t, "lock:\n  enabled: true\n")
	cfg.Storage.Driver = config.DriverFile

	_, err := New(context.Background(), cfg, WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "不支持存储锁")
}

func TestNew_InvalidCurrency(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Checkout.Currency = "XX"

	_, err := New(context.Background(), cfg, WithLogger(zap.NewNop()))
	assert.Error(t, err)
}

func TestContainer_SharedStoreAcrossContexts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t, "")
	store := memory.NewStore()
	bus := memory.NewBus()
	locker := memory.NewLocker()

	newContext := func() *Container {
		c, err := New(ctx, cfg,
			WithLogger(zap.NewNop()),
			WithStore(store),
			WithTransport(bus),
			WithStorageLocker(locker),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		go func() { _ = c.Listen(ctx) }()
		return c
	}

	a := newContext()
	b := newContext()
	require.Eventually(t, func() bool { return bus.Listeners() == 2 }, time.Second, 5*time.Millisecond)

	seeded, err := a.Bootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)
	seeded, err = b.Bootstrap(ctx)
	require.NoError(t, err)
	assert.False(t, seeded, "第二个上下文复用已有账本")

	signals, unsubscribe := b.Hub.Subscribe()
	defer unsubscribe()

	_, err = a.AddItem.Execute(ctx, appcart.AddItemRequest{ProductID: 1, Quantity: 3})
	require.NoError(t, err)

	select {
	case s := <-signals:
		assert.Equal(t, notify.KindStorage, s.Kind)
	case <-time.After(time.Second):
		t.Fatal("另一个上下文没有收到存储信号")
	}

	view, err := b.GetCart.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Count)
	t.Log("✓ 上下文B重新读取后看到上下文A的写入")
}
