// Package app 组装一个执行上下文
//
// 一个Container = 一个执行上下文：一个通知中心 + 一个预留引擎，
// 以及建立在它们之上的全部用例。API进程和每次CLI调用各自持有一个Container，
// 它们通过同一个键值存储（storage.driver + storage.namespace）共享账本和购物车。
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	appcart "github.com/xiebiao/storefront/internal/application/cart"
	appcatalog "github.com/xiebiao/storefront/internal/application/catalog"
	appcheckout "github.com/xiebiao/storefront/internal/application/checkout"
	appstock "github.com/xiebiao/storefront/internal/application/stock"
	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/ledger"
	"github.com/xiebiao/storefront/internal/domain/notify"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/internal/infrastructure/catalogsource"
	"github.com/xiebiao/storefront/internal/infrastructure/config"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/kv"
	"github.com/xiebiao/storefront/pkg/metrics"
	"github.com/xiebiao/storefront/pkg/money"
)

// Container 执行上下文及其依赖
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Store   kv.Store
	Hub     *notify.Hub
	Ledgers *ledger.Store
	Carts   *cart.Store
	Engine  *reservation.Engine
	Catalog *catalogsource.Cached

	// 应用层用例
	EnsureLedger *appstock.EnsureLedgerUseCase
	GetStock     *appstock.GetStockUseCase
	ResetStock   *appstock.ResetStockUseCase
	ListProducts *appcatalog.ListProductsUseCase
	GetProduct   *appcatalog.GetProductUseCase
	GetCart      *appcart.GetCartUseCase
	AddItem      *appcart.AddItemUseCase
	RemoveItem   *appcart.RemoveItemUseCase
	UpdateItem   *appcart.UpdateItemUseCase
	Quote        *appcheckout.QuoteUseCase
	Pay          *appcheckout.PayUseCase

	closers []func() error
}

// Option 覆盖默认组件（测试和同进程多上下文使用）
type Option func(*options)

type options struct {
	logger    *zap.Logger
	store     kv.Store
	transport notify.Transport
	locker    reservation.Locker
	loader    catalog.Loader
}

// WithLogger 使用已有日志，不再按log配置创建
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStore 使用已有存储，不再按storage.driver打开后端
// 同一进程内的多个上下文共享一个存储时使用
func WithStore(s kv.Store) Option {
	return func(o *options) { o.store = s }
}

// WithStorageLocker 使用已有存储锁（配合WithStore）
func WithStorageLocker(l reservation.Locker) Option {
	return func(o *options) { o.locker = l }
}

// WithTransport 使用已有信号传输，忽略notify.transport
func WithTransport(t notify.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithCatalogLoader 使用已有目录加载器，忽略catalog配置
func WithCatalogLoader(l catalog.Loader) Option {
	return func(o *options) { o.loader = l }
}

// New 按配置组装执行上下文
//
// 组装顺序（依赖链）:
//  1. 日志、指标
//  2. 存储后端 → 信号传输 → 存储锁
//  3. 领域层：通知中心 → 账本/购物车 → 预留引擎
//  4. 目录加载器
//  5. 应用层用例
//
// 任一步骤失败时关闭已打开的资源
func New(ctx context.Context, cfg *config.Config, opts ...Option) (_ *Container, err error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	c := &Container{Config: cfg}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	// 1. 日志、指标
	if o.logger != nil {
		c.Logger = o.logger
	} else if c.Logger, err = newLogger(cfg.Log); err != nil {
		return nil, err
	}
	metrics.InitMetrics()

	// 2. 基础设施
	var be *backend
	if o.store != nil {
		be = &backend{store: o.store, locker: o.locker}
	} else {
		be, err = openBackend(ctx, cfg, c.Logger)
		c.closers = append(c.closers, be.close)
		if err != nil {
			return nil, err
		}
	}
	if o.transport != nil {
		be.transport = o.transport
	}
	c.Store = be.store

	// 3. 领域层
	hubOpts := []notify.Option{notify.WithLogger(c.Logger)}
	if be.transport != nil {
		hubOpts = append(hubOpts, notify.WithTransport(be.transport))
	}
	c.Hub = notify.NewHub(hubOpts...)
	logger := c.Logger.With(zap.String("context_id", c.Hub.Origin()))

	ns := cfg.Storage.Namespace
	c.Ledgers = ledger.NewStore(kv.NewLedgerRepository(c.Store, ns, logger), c.Hub)
	c.Carts = cart.NewStore(kv.NewCartRepository(c.Store, ns, logger), c.Hub)

	engineOpts := []reservation.Option{
		reservation.WithBatcher(c.Hub),
		reservation.WithLogger(logger),
	}
	if cfg.Lock.Enabled {
		if be.locker == nil {
			return nil, fmt.Errorf("存储驱动%s不支持存储锁", cfg.Storage.Driver)
		}
		engineOpts = append(engineOpts, reservation.WithLocker(be.locker))
	}
	c.Engine = reservation.NewEngine(c.Ledgers, c.Carts, engineOpts...)

	// 4. 目录
	loader := o.loader
	if loader == nil {
		loader = newCatalogLoader(cfg.Catalog)
	}
	c.Catalog = catalogsource.NewCached(loader)

	// 5. 应用层
	unit, err := money.ParseCurrency(cfg.Checkout.Currency)
	if err != nil {
		return nil, err
	}
	pricing := appcart.Pricing{ShippingFee: cfg.Checkout.ShippingFeeAmount(), Currency: unit}
	settings := appcheckout.Settings{
		Pricing:         pricing,
		PaymentMethods:  cfg.Checkout.PaymentMethods,
		ProcessingDelay: cfg.Checkout.ProcessingDelay,
	}

	c.EnsureLedger = appstock.NewEnsureLedgerUseCase(c.Engine, logger)
	c.GetStock = appstock.NewGetStockUseCase(c.Catalog, c.EnsureLedger, c.Carts)
	c.ResetStock = appstock.NewResetStockUseCase(c.Catalog, c.Engine, logger)
	c.ListProducts = appcatalog.NewListProductsUseCase(c.Catalog, c.EnsureLedger, unit)
	c.GetProduct = appcatalog.NewGetProductUseCase(c.Catalog, c.EnsureLedger, unit)
	c.GetCart = appcart.NewGetCartUseCase(c.Carts, pricing)
	c.AddItem = appcart.NewAddItemUseCase(c.Catalog, c.Engine, c.Carts, pricing)
	c.RemoveItem = appcart.NewRemoveItemUseCase(c.Engine, c.Carts, pricing)
	c.UpdateItem = appcart.NewUpdateItemUseCase(c.Engine, c.Carts, pricing)
	c.Quote = appcheckout.NewQuoteUseCase(c.Carts, settings)
	c.Pay = appcheckout.NewPayUseCase(c.Engine, settings, logger)

	return c, nil
}

// Bootstrap 会话启动：加载目录，账本不存在时初始化
func (c *Container) Bootstrap(ctx context.Context) (seeded bool, err error) {
	products, err := c.Catalog.Load(ctx)
	if err != nil {
		return false, err
	}
	_, seeded, err = c.EnsureLedger.Execute(ctx, products)
	return seeded, err
}

// Listen 接收其他上下文的变更信号，阻塞直到ctx结束
// 没有配置传输时立即返回
func (c *Container) Listen(ctx context.Context) error {
	err := c.Hub.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close 按打开的逆序释放资源
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
