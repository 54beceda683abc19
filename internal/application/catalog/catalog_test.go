package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/xiebiao/storefront/internal/application/stock"
	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/ledger"
	"github.com/xiebiao/storefront/internal/domain/notify"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/kv"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/memory"
)

var products = []catalog.Product{
	{ID: 1, Name: "Toothbrush", Price: decimal.RequireFromString("3.50"), Category: "Oral Care", Stock: 5},
	{ID: 2, Name: "Skillet", Price: decimal.RequireFromString("29.99"), Category: "Kitchen", Stock: 2},
	{ID: 3, Name: "Towel", Price: decimal.RequireFromString("12.00"), Category: "Bath", Stock: 0},
}

func setup() (*ListProductsUseCase, *GetProductUseCase, *reservation.Engine, *ledger.Store) {
	store := memory.NewStore()
	hub := notify.NewHub()
	ledgers := ledger.NewStore(kv.NewLedgerRepository(store, "test", zap.NewNop()), hub)
	carts := cart.NewStore(kv.NewCartRepository(store, "test", zap.NewNop()), hub)
	engine := reservation.NewEngine(ledgers, carts, reservation.WithBatcher(hub))
	loader := catalog.LoaderFunc(func(ctx context.Context) ([]catalog.Product, error) {
		return products, nil
	})
	ensure := stock.NewEnsureLedgerUseCase(engine, zap.NewNop())
	return NewListProductsUseCase(loader, ensure, currency.USD),
		NewGetProductUseCase(loader, ensure, currency.USD),
		engine, ledgers
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	list, _, engine, ledgers := setup()

	t.Run("首次打开初始化账本", func(t *testing.T) {
		resp, err := list.Execute(ctx, ListProductsRequest{})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, []string{"Oral Care", "Kitchen", "Bath"}, resp.Categories)
		assert.Equal(t, "USD 3.50", resp.List[0].PriceDisplay)
		assert.True(t, resp.List[2].SoldOut)

		_, found, err := ledgers.Get(ctx)
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("可用库存来自账本", func(t *testing.T) {
		_, err := engine.AddToCart(ctx, products[1], 2)
		require.NoError(t, err)

		resp, err := list.Execute(ctx, ListProductsRequest{})
		require.NoError(t, err)
		assert.Equal(t, 0, resp.List[1].Available)
		assert.True(t, resp.List[1].SoldOut)
		assert.Equal(t, 2, resp.List[1].Stock)
	})

	t.Run("账本缺少条目时显示基础库存", func(t *testing.T) {
		require.NoError(t, ledgers.Set(ctx, ledger.Ledger{2: 0}))

		resp, err := list.Execute(ctx, ListProductsRequest{})
		require.NoError(t, err)
		assert.Equal(t, 5, resp.List[0].Available)
	})

	t.Run("按分类和价格过滤", func(t *testing.T) {
		minPrice := decimal.RequireFromString("10")
		resp, err := list.Execute(ctx, ListProductsRequest{MinPrice: &minPrice})
		require.NoError(t, err)
		require.Equal(t, 2, resp.Total)
		assert.Equal(t, uint(2), resp.List[0].ID)

		resp, err = list.Execute(ctx, ListProductsRequest{Categories: []string{"bath"}})
		require.NoError(t, err)
		require.Equal(t, 1, resp.Total)
		assert.Equal(t, uint(3), resp.List[0].ID)
		assert.Len(t, resp.Categories, 3, "分类列表不受过滤影响")
	})
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()
	_, get, _, _ := setup()

	item, err := get.Execute(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Skillet", item.Name)
	assert.Equal(t, 2, item.Available)

	_, err = get.Execute(ctx, 99)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}
