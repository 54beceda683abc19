package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/catalog"
)

var products = []catalog.Product{
	{ID: 1, Name: "Toothbrush", Stock: 5},
	{ID: 2, Name: "Skillet", Stock: 2},
}

func TestSeed(t *testing.T) {
	assert.Equal(t, Ledger{1: 5, 2: 2}, Seed(products))
	assert.Equal(t, Ledger{}, Seed(nil))
}

func TestDerive(t *testing.T) {
	t.Run("基础库存减购物车数量", func(t *testing.T) {
		c := cart.Cart{}.With(products[0], 2)
		assert.Equal(t, Ledger{1: 3, 2: 2}, Derive(products, c))
	})

	t.Run("购物车超过基础库存时为0", func(t *testing.T) {
		c := cart.Cart{}.With(products[1], 7)
		assert.Equal(t, 0, Derive(products, c)[2])
	})

	t.Run("目录中已不存在的商品为0", func(t *testing.T) {
		c := cart.Cart{}.With(catalog.Product{ID: 42}, 1)
		l := Derive(products, c)
		n, ok := l.Remaining(42)
		assert.True(t, ok)
		assert.Equal(t, 0, n)
	})
}

type memRepo struct {
	ledger Ledger
	found  bool
	saves  int
}

func (r *memRepo) Load(context.Context) (Ledger, bool, error) {
	if !r.found {
		return nil, false, nil
	}
	return r.ledger.Clone(), true, nil
}

func (r *memRepo) Save(_ context.Context, l Ledger) error {
	r.ledger, r.found = l.Clone(), true
	r.saves++
	return nil
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify(context.Context) { c.n++ }

func TestStore(t *testing.T) {
	ctx := context.Background()
	repo, n := &memRepo{}, &countingNotifier{}
	s := NewStore(repo, n)

	t.Run("不存在时不会自动生成", func(t *testing.T) {
		l, found, err := s.Get(ctx)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, l)
		assert.Equal(t, 0, repo.saves)
	})

	t.Run("空账本和不存在是两种状态", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, Ledger{}))
		l, found, err := s.Get(ctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, l)
	})

	t.Run("Seed写入基础库存", func(t *testing.T) {
		l, err := s.Seed(ctx, products)
		require.NoError(t, err)
		assert.Equal(t, Ledger{1: 5, 2: 2}, l)
		assert.Equal(t, Ledger{1: 5, 2: 2}, repo.ledger)
	})

	t.Run("Reset不管原值，按购物车重新推导", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, Ledger{1: 0, 2: 0}))
		l, err := s.Reset(ctx, products, cart.Cart{}.With(products[0], 2))
		require.NoError(t, err)
		assert.Equal(t, 3, l[1])
		assert.Equal(t, 2, l[2])
	})

	assert.Equal(t, 4, n.n, "每次写入都通知")
}
