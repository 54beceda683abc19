package reservation

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/ledger"
	"github.com/xiebiao/storefront/pkg/metrics"
)

// Locker 存储级单写锁（可选）
// Acquire阻塞直到获得锁或ctx结束，返回的release用于释放
type Locker interface {
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

// Batcher 把一次操作中的多次写入合并为一次变更通知（notify.Hub实现）
type Batcher interface {
	Batch(ctx context.Context, fn func() error) error
}

// Engine 预留引擎：在库存账本和购物车之间移动库存
//
// 每个操作都是 读账本 → 读购物车 → 计算 → 写账本 → 写购物车 → 通知，
// 在同一个执行上下文（一个Engine实例）内由互斥锁保证整体原子。
//
// 跨上下文的竞争：多个Engine共享同一个存储时，两个上下文可能在对方写入前
// 读到同一份账本，于是把同一件库存预留两次（丢失更新）。默认不解决这个竞争，
// 只通过变更通知让所有上下文重新读取最后写入的结果；配置Locker后每个操作
// 额外持有存储级锁，竞争随之消失。
type Engine struct {
	ledger  *ledger.Store
	cart    *cart.Store
	batcher Batcher
	locker  Locker
	logger  *zap.Logger

	mu         sync.Mutex
	processing bool
}

// Option Engine配置项
type Option func(*Engine)

// WithLocker 启用存储级单写锁
func WithLocker(l Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithBatcher 设置通知合并器
func WithBatcher(b Batcher) Option {
	return func(e *Engine) { e.batcher = b }
}

// NewEngine 创建预留引擎
func NewEngine(ledgers *ledger.Store, carts *cart.Store, opts ...Option) *Engine {
	e := &Engine{
		ledger: ledgers,
		cart:   carts,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddResult 加入购物车的结果
// Added可能小于Requested（按剩余库存截断），调用方必须把这一点告诉用户
type AddResult struct {
	Requested int
	Added     int
	Remaining int // 操作后账本剩余
	Quantity  int // 操作后购物车中的数量
}

// Clamped 是否被库存截断
func (r AddResult) Clamped() bool {
	return r.Added < r.Requested
}

// UpdateResult 修改数量的结果
type UpdateResult struct {
	Found    bool // 购物车中是否有该商品（没有则为no-op）
	Quantity int  // 操作后的数量
	Granted  int  // 增加时实际批准的件数
	Returned int  // 减少时归还账本的件数
}

// AddToCart 把商品加入购物车
// 1. available = 账本剩余（账本没有该商品时使用商品基础库存）
// 2. qty = min(requested, available)，qty<=0 返回ErrOutOfStock，不写入
// 3. 购物车已有该商品则合并数量，否则追加快照行
// 4. 账本扣减qty
// 5. 写账本、写购物车、通知
func (e *Engine) AddToCart(ctx context.Context, p catalog.Product, requested int) (AddResult, error) {
	result := AddResult{Requested: requested}

	err := e.run(ctx, "add", func() (bool, error) {
		current, found, err := e.ledger.Get(ctx)
		if err != nil {
			return false, err
		}

		available, ok := current.Remaining(p.ID)
		if !ok {
			available = p.Stock
		}
		qty := min(requested, available)
		if qty <= 0 {
			return false, ErrOutOfStock
		}

		lines, err := e.cart.Get(ctx)
		if err != nil {
			return false, err
		}

		nextLedger := current.Clone()
		nextLedger[p.ID] = available - qty
		nextCart := lines.With(p, qty)

		if err := e.commit(ctx, current, found, nextLedger, nextCart); err != nil {
			return false, err
		}

		result.Added = qty
		result.Remaining = nextLedger[p.ID]
		result.Quantity = nextCart.Quantity(p.ID)
		metrics.RecordUnits(qty)

		if result.Clamped() {
			e.logger.Info("add to cart clamped by stock",
				zap.Uint("product_id", p.ID),
				zap.Int("requested", requested),
				zap.Int("added", qty))
		}
		return false, nil
	})
	return result, err
}

// RemoveFromCart 从购物车删除商品，件数全部归还账本
// 购物车中没有该商品时是no-op（幂等），返回false
func (e *Engine) RemoveFromCart(ctx context.Context, productID uint) (bool, error) {
	removed := false

	err := e.run(ctx, "remove", func() (bool, error) {
		current, found, err := e.ledger.Get(ctx)
		if err != nil {
			return false, err
		}
		lines, err := e.cart.Get(ctx)
		if err != nil {
			return false, err
		}

		line, ok := lines.Find(productID)
		if !ok {
			return true, nil
		}

		nextLedger := current.Clone()
		nextLedger[productID] += line.Quantity

		if err := e.commit(ctx, current, found, nextLedger, lines.Without(productID)); err != nil {
			return false, err
		}

		removed = true
		metrics.RecordUnits(-line.Quantity)
		return false, nil
	})
	return removed, err
}

// UpdateQuantity 修改购物车中某商品的数量
// 1. 购物车中没有该商品：no-op
// 2. newQty下限为1（删除请用RemoveFromCart）
// 3. 增加：批准 min(diff, 剩余)，账本没有该商品时剩余按0计算；
//    只有批准数<=0时返回ErrOutOfStock，请求超过剩余时静默批准最大可用数
// 4. 减少：总是成功，差额归还账本
// 5. 数量不变：不写入也不通知
func (e *Engine) UpdateQuantity(ctx context.Context, productID uint, newQty int) (UpdateResult, error) {
	var result UpdateResult

	err := e.run(ctx, "update", func() (bool, error) {
		current, found, err := e.ledger.Get(ctx)
		if err != nil {
			return false, err
		}
		lines, err := e.cart.Get(ctx)
		if err != nil {
			return false, err
		}

		line, ok := lines.Find(productID)
		if !ok {
			return true, nil
		}
		result.Found = true
		result.Quantity = line.Quantity

		newQty = max(1, newQty)
		diff := newQty - line.Quantity
		if diff == 0 {
			return true, nil
		}

		remaining, _ := current.Remaining(productID)
		nextLedger := current.Clone()
		quantity := newQty

		if diff > 0 {
			allowed := min(diff, remaining)
			if allowed <= 0 {
				return false, ErrOutOfStock
			}
			nextLedger[productID] = remaining - allowed
			quantity = line.Quantity + allowed
			result.Granted = allowed
		} else {
			nextLedger[productID] = remaining - diff
			result.Returned = -diff
		}

		if err := e.commit(ctx, current, found, nextLedger, lines.WithQuantity(productID, quantity)); err != nil {
			return false, err
		}

		result.Quantity = quantity
		metrics.RecordUnits(result.Granted - result.Returned)
		return false, nil
	})
	return result, err
}

// ResetLedger 按目录和当前购物车重新推导账本
func (e *Engine) ResetLedger(ctx context.Context, products []catalog.Product) (ledger.Ledger, error) {
	var result ledger.Ledger

	err := e.run(ctx, "reset", func() (bool, error) {
		lines, err := e.cart.Get(ctx)
		if err != nil {
			return false, err
		}
		result, err = e.ledger.Reset(ctx, products, lines)
		return false, err
	})
	return result, err
}

// EnsureLedger 账本不存在时按目录初始化，seeded表示本次是否新建
// 检查和初始化在同一把锁内完成，不会覆盖并发加入购物车时扣减的库存
func (e *Engine) EnsureLedger(ctx context.Context, products []catalog.Product) (ledger.Ledger, bool, error) {
	var (
		result ledger.Ledger
		seeded bool
	)

	err := e.exclusive(ctx, func() error {
		current, found, err := e.ledger.Get(ctx)
		if err != nil {
			return err
		}
		if found {
			result = current
			return nil
		}
		result, err = e.ledger.Seed(ctx, products)
		seeded = err == nil
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return result, seeded, nil
}

// BeginCheckout 进入结算处理状态
// 购物车为空返回ErrEmptyCart；处理期间所有修改操作返回ErrCheckoutInProgress
func (e *Engine) BeginCheckout(ctx context.Context) (cart.Cart, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.processing {
		return nil, ErrCheckoutInProgress
	}
	lines, err := e.cart.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	e.processing = true
	return lines, nil
}

// CompleteCheckout 清空购物车并退出处理状态
// 账本不变：加入购物车时扣减的库存被视为已消耗
// 失败时仍处于处理状态，由调用方AbortCheckout
func (e *Engine) CompleteCheckout(ctx context.Context) error {
	return e.exclusive(ctx, func() error {
		if err := e.cart.Set(ctx, cart.Cart{}); err != nil {
			return err
		}
		e.processing = false
		return nil
	})
}

// AbortCheckout 退出处理状态，购物车保持不变
func (e *Engine) AbortCheckout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.processing = false
}

// Processing 是否处于结算处理状态
func (e *Engine) Processing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processing
}

// run 执行一个修改操作：拒绝处理中的结算，记录指标
// fn返回noop=true表示没有任何写入
func (e *Engine) run(ctx context.Context, op string, fn func() (bool, error)) error {
	noop := false

	err := e.exclusive(ctx, func() error {
		if e.processing {
			return ErrCheckoutInProgress
		}
		var err error
		noop, err = fn()
		return err
	})

	switch {
	case err == nil && noop:
		metrics.RecordReservation(op, metrics.ResultNoop)
	case err == nil:
		metrics.RecordReservation(op, metrics.ResultSuccess)
	case errors.Is(err, ErrOutOfStock), errors.Is(err, ErrCheckoutInProgress):
		metrics.RecordReservation(op, metrics.ResultRejected)
	default:
		metrics.RecordReservation(op, metrics.ResultFailure)
		e.logger.Error("reservation failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

// exclusive 持有上下文互斥锁（以及可选的存储锁），在通知合并中执行fn
func (e *Engine) exclusive(ctx context.Context, fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locker != nil {
		release, err := e.locker.Acquire(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("release storage lock failed", zap.Error(err))
			}
		}()
	}

	if e.batcher == nil {
		return fn()
	}
	return e.batcher.Batch(ctx, fn)
}

// commit 先写账本再写购物车
// 购物车写入失败时把账本恢复为操作前的值，保证两者仍处于上一个一致状态
func (e *Engine) commit(ctx context.Context, prev ledger.Ledger, prevFound bool, nextLedger ledger.Ledger, nextCart cart.Cart) error {
	if err := e.ledger.Set(ctx, nextLedger); err != nil {
		return err
	}
	if err := e.cart.Set(ctx, nextCart); err != nil {
		if !prevFound {
			// 账本原本不存在，无法恢复为"不存在"，保留新值等待下一次Reset
			e.logger.Error("cart write failed after ledger was created", zap.Error(err))
			return err
		}
		if rerr := e.ledger.Set(ctx, prev); rerr != nil {
			e.logger.Error("restore ledger failed", zap.Error(rerr))
		}
		return err
	}
	return nil
}
