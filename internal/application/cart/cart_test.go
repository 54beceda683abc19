package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

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
}

var pricing = Pricing{ShippingFee: decimal.NewFromInt(50), Currency: currency.USD}

type fixture struct {
	ledgers *ledger.Store
	add     *AddItemUseCase
	remove  *RemoveItemUseCase
	update  *UpdateItemUseCase
	get     *GetCartUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	hub := notify.NewHub()
	ledgers := ledger.NewStore(kv.NewLedgerRepository(store, "test", zap.NewNop()), hub)
	carts := cart.NewStore(kv.NewCartRepository(store, "test", zap.NewNop()), hub)
	engine := reservation.NewEngine(ledgers, carts, reservation.WithBatcher(hub))
	loader := catalog.LoaderFunc(func(ctx context.Context) ([]catalog.Product, error) {
		return products, nil
	})

	_, err := ledgers.Seed(context.Background(), products)
	require.NoError(t, err)

	return &fixture{
		ledgers: ledgers,
		add:     NewAddItemUseCase(loader, engine, carts, pricing),
		remove:  NewRemoveItemUseCase(engine, carts, pricing),
		update:  NewUpdateItemUseCase(engine, carts, pricing),
		get:     NewGetCartUseCase(carts, pricing),
	}
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("加购并汇总", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.add.Execute(ctx, AddItemRequest{ProductID: 1, Quantity: 2})
		require.NoError(t, err)
		assert.False(t, resp.Clamped)
		assert.Equal(t, 3, resp.Remaining)
		assert.Equal(t, 2, resp.Cart.Count)
		assert.True(t, decimal.NewFromInt(7).Equal(resp.Cart.Subtotal))
		assert.True(t, decimal.NewFromInt(57).Equal(resp.Cart.Total))
		assert.Equal(t, "USD 57.00", resp.Cart.TotalDisplay)
	})

	t.Run("超过库存时截断并提示", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.add.Execute(ctx, AddItemRequest{ProductID: 2, Quantity: 5})
		require.NoError(t, err)
		assert.True(t, resp.Clamped)
		assert.Equal(t, 2, resp.Added)
		assert.Contains(t, resp.Message, "仅加入2件")

		_, err = f.add.Execute(ctx, AddItemRequest{ProductID: 2, Quantity: 1})
		assert.ErrorIs(t, err, reservation.ErrOutOfStock)
	})

	t.Run("商品不存在", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.add.Execute(ctx, AddItemRequest{ProductID: 42, Quantity: 1})
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})
}

func TestUpdateAndRemoveItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.add.Execute(ctx, AddItemRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	t.Run("增加超过剩余时批准最大可用数", func(t *testing.T) {
		resp, err := f.update.Execute(ctx, UpdateItemRequest{ProductID: 1, Quantity: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, resp.Quantity)
		assert.Equal(t, 4, resp.Granted)
		assert.Contains(t, resp.Message, "仅增加4件")
	})

	t.Run("减少归还库存", func(t *testing.T) {
		resp, err := f.update.Execute(ctx, UpdateItemRequest{ProductID: 1, Quantity: 0})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Quantity, "数量下限为1")
		assert.Equal(t, 4, resp.Returned)
		assert.Empty(t, resp.Message)
	})

	t.Run("不在购物车中", func(t *testing.T) {
		resp, err := f.update.Execute(ctx, UpdateItemRequest{ProductID: 2, Quantity: 2})
		require.NoError(t, err)
		assert.False(t, resp.Found)
	})

	t.Run("删除", func(t *testing.T) {
		resp, err := f.remove.Execute(ctx, 1)
		require.NoError(t, err)
		assert.True(t, resp.Removed)
		assert.Empty(t, resp.Cart.Lines)
		assert.True(t, resp.Cart.Shipping.IsZero(), "空购物车不收运费")

		resp, err = f.remove.Execute(ctx, 1)
		require.NoError(t, err)
		assert.False(t, resp.Removed)

		l, _, err := f.ledgers.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, l[1])
	})

	t.Run("查看", func(t *testing.T) {
		view, err := f.get.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, view.Count)
		assert.Equal(t, "USD 0.00", view.TotalDisplay)
	})
}
