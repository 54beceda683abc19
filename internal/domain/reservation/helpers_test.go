package reservation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/ledger"
	"github.com/xiebiao/storefront/internal/domain/notify"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/kv"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/memory"
)

const namespace = "test"

var (
	brush = catalog.Product{ID: 1, Name: "Toothbrush", Price: decimal.RequireFromString("3.50"), Category: "Oral Care", Stock: 5}
	pan   = catalog.Product{ID: 2, Name: "Skillet", Price: decimal.RequireFromString("29.99"), Category: "Kitchen", Stock: 2}
	towel = catalog.Product{ID: 3, Name: "Towel", Price: decimal.RequireFromString("12.00"), Category: "Bath", Stock: 0}

	products = []catalog.Product{brush, pan, towel}
)

// tab 一个执行上下文：自己的通知中心和引擎，共享同一个存储
type tab struct {
	hub     *notify.Hub
	ledgers *ledger.Store
	carts   *cart.Store
	engine  *reservation.Engine
}

func newTab(store kv.Store, opts ...reservation.Option) *tab {
	hub := notify.NewHub()
	ledgers := ledger.NewStore(kv.NewLedgerRepository(store, namespace, zap.NewNop()), hub)
	carts := cart.NewStore(kv.NewCartRepository(store, namespace, zap.NewNop()), hub)
	opts = append([]reservation.Option{reservation.WithBatcher(hub)}, opts...)
	return &tab{
		hub:     hub,
		ledgers: ledgers,
		carts:   carts,
		engine:  reservation.NewEngine(ledgers, carts, opts...),
	}
}

// newSeededTab 新建上下文并按目录初始化账本
func newSeededTab(t *testing.T, opts ...reservation.Option) (*tab, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	tb := newTab(store, opts...)
	_, err := tb.ledgers.Seed(context.Background(), products)
	require.NoError(t, err)
	return tb, store
}

func (tb *tab) state(t *testing.T) (ledger.Ledger, cart.Cart) {
	t.Helper()
	ctx := context.Background()
	l, found, err := tb.ledgers.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	c, err := tb.carts.Get(ctx)
	require.NoError(t, err)
	return l, c
}

// requireInvariant 单上下文不变式：剩余 + 购物车数量 == 基础库存
func (tb *tab) requireInvariant(t *testing.T) {
	t.Helper()
	l, c := tb.state(t)
	for _, p := range products {
		require.Equal(t, p.Stock, l[p.ID]+c.Quantity(p.ID), "商品%d: 剩余%d 购物车%d", p.ID, l[p.ID], c.Quantity(p.ID))
		require.GreaterOrEqual(t, l[p.ID], 0)
	}
	for _, line := range c {
		require.Positive(t, line.Quantity)
	}
}

// gatedStore 在第一次读取指定键时暂停，直到release被关闭
// 用来确定性地重现两个上下文的读写交错
type gatedStore struct {
	kv.Store
	key     string
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func newGatedStore(inner kv.Store, key string) *gatedStore {
	return &gatedStore{
		Store:   inner,
		key:     key,
		reached: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == g.key {
		g.once.Do(func() {
			close(g.reached)
			<-g.release
		})
	}
	return g.Store.Get(ctx, key)
}

// failingStore 对指定键的写入返回错误
type failingStore struct {
	kv.Store
	key string
}

var errDiskFull = errors.New("disk full")

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if key == f.key {
		return errDiskFull
	}
	return f.Store.Set(ctx, key, value)
}
