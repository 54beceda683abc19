package reservation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/storefront/internal/domain/ledger"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/kv"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/memory"
)

func TestEnsureLedger(t *testing.T) {
	ctx := context.Background()
	tb := newTab(memory.NewStore())

	t.Run("账本不存在时初始化", func(t *testing.T) {
		l, seeded, err := tb.engine.EnsureLedger(ctx, products)
		require.NoError(t, err)
		assert.True(t, seeded)
		assert.Equal(t, ledger.Ledger{1: 5, 2: 2, 3: 0}, l)
		t.Log("✓ 首次打开按基础库存初始化")
	})

	t.Run("账本存在时原样返回", func(t *testing.T) {
		_, err := tb.engine.AddToCart(ctx, brush, 2)
		require.NoError(t, err)

		l, seeded, err := tb.engine.EnsureLedger(ctx, products)
		require.NoError(t, err)
		assert.False(t, seeded)
		assert.Equal(t, 3, l[brush.ID])
		tb.requireInvariant(t)
		t.Log("✓ 已有账本不会被重新初始化")
	})
}

// 同一上下文内，初始化读到"账本不存在"之后，加入购物车必须等初始化完成，
// 否则初始化会覆盖刚扣减的库存
func TestEnsureLedger_SerializedWithAdd(t *testing.T) {
	ctx := context.Background()
	for _, withLocker := range []bool{false, true} {
		name := "仅上下文互斥锁"
		var opts []reservation.Option
		if withLocker {
			name = "加上存储锁"
			opts = append(opts, reservation.WithLocker(memory.NewLocker()))
		}

		t.Run(name, func(t *testing.T) {
			gate := newGatedStore(memory.NewStore(), kv.LedgerKey(namespace))
			tb := newTab(gate, opts...)

			seedDone := make(chan error, 1)
			go func() {
				_, seeded, err := tb.engine.EnsureLedger(ctx, products)
				if err == nil && !seeded {
					t.Error("第一次调用应当初始化账本")
				}
				seedDone <- err
			}()

			// 初始化停在读取账本处，此时存储中还没有账本
			<-gate.reached

			type outcome struct {
				res reservation.AddResult
				err error
			}
			addDone := make(chan outcome, 1)
			go func() {
				res, err := tb.engine.AddToCart(ctx, brush, 3)
				addDone <- outcome{res, err}
			}()

			select {
			case <-addDone:
				t.Fatal("加入购物车不应在初始化进行中完成")
			case <-time.After(50 * time.Millisecond):
			}

			close(gate.release)
			require.NoError(t, <-seedDone)
			add := <-addDone
			require.NoError(t, add.err)
			assert.Equal(t, 3, add.res.Added)

			l, c := tb.state(t)
			assert.Equal(t, 2, l[brush.ID])
			assert.Equal(t, 3, c.Quantity(brush.ID))
			tb.requireInvariant(t)
			t.Log("✓ 初始化与加入购物车串行，剩余 + 购物车 == 基础库存")
		})
	}
}
