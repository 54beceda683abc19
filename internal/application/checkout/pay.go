package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcart "github.com/xiebiao/storefront/internal/application/cart"
	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/pkg/metrics"
	"github.com/xiebiao/storefront/pkg/money"
	"github.com/xiebiao/storefront/pkg/saga"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// PayUseCase 模拟支付
//
// 教学重点:处理状态与补偿
//
// 流程（Saga）:
//  1. begin:   进入处理状态，拿到购物车快照（空购物车直接失败）
//  2. process: 模拟支付耗时，可被ctx取消
//  3. clear:   清空购物车并退出处理状态
//
// 处理状态期间同一上下文的所有修改操作都返回ErrCheckoutInProgress，
// 避免在"已提交支付"和"清空购物车"之间有修改插进来。
// 2或3失败时补偿1：退出处理状态，购物车保持原样。
//
// 注意:账本不变。加入购物车时扣减的库存视为已消耗，结算不再归还。
type PayUseCase struct {
	engine   *reservation.Engine
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

// NewPayUseCase 创建支付用例
func NewPayUseCase(engine *reservation.Engine, settings Settings, logger *zap.Logger) *PayUseCase {
	return &PayUseCase{
		engine:   engine,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// PayRequest 支付请求
type PayRequest struct {
	Method string
}

// Receipt 支付回执
type Receipt struct {
	ID           string             `json:"id"`
	Method       string             `json:"method"`
	Lines        []appcart.LineItem `json:"lines"`
	Count        int                `json:"count"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	Shipping     decimal.Decimal    `json:"shipping"`
	Total        decimal.Decimal    `json:"total"`
	TotalDisplay string             `json:"total_display"`
	PaidAt       time.Time          `json:"paid_at"`
}

// Execute 执行支付
func (uc *PayUseCase) Execute(ctx context.Context, req PayRequest) (receipt *Receipt, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Pay")
	started := time.Now()
	defer func() {
		tracing.EndSpan(span, err)
		metrics.RecordCheckout(checkoutResult(err), time.Since(started).Seconds())
	}()

	// 1. 支付方式校验（在进入处理状态之前）
	if !uc.settings.supports(req.Method) {
		return nil, reservation.ErrPaymentMethodRequired
	}
	method := strings.TrimSpace(req.Method)

	// 2. 编排结算步骤
	var lines cart.Cart
	s := saga.NewSaga(0, saga.WithLogger(uc.logger))
	s.AddStep("begin",
		func(ctx context.Context) error {
			var err error
			lines, err = uc.engine.BeginCheckout(ctx)
			return err
		},
		func(ctx context.Context) error {
			uc.engine.AbortCheckout()
			return nil
		},
	)
	s.AddStep("process", func(ctx context.Context) error {
		return wait(ctx, uc.settings.ProcessingDelay)
	}, nil)
	s.AddStep("clear", func(ctx context.Context) error {
		return uc.engine.CompleteCheckout(ctx)
	}, nil)

	if err := s.Execute(ctx); err != nil {
		if !errors.Is(err, reservation.ErrEmptyCart) && !errors.Is(err, reservation.ErrCheckoutInProgress) {
			uc.logger.Warn("checkout aborted", zap.String("method", method), zap.Error(err))
		}
		return nil, err
	}

	// 3. 生成回执（基于进入处理状态时的购物车快照）
	view := appcart.NewView(lines, uc.settings.Pricing)
	receipt = &Receipt{
		ID:           uuid.NewString(),
		Method:       method,
		Lines:        view.Lines,
		Count:        view.Count,
		Subtotal:     view.Subtotal,
		Shipping:     view.Shipping,
		Total:        view.Total,
		TotalDisplay: money.Format(view.Total, uc.settings.Pricing.Currency),
		PaidAt:       uc.now(),
	}

	uc.logger.Info("checkout completed",
		zap.String("receipt_id", receipt.ID),
		zap.String("method", method),
		zap.String("total", receipt.TotalDisplay))
	return receipt, nil
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, reservation.ErrEmptyCart),
		errors.Is(err, reservation.ErrCheckoutInProgress),
		errors.Is(err, reservation.ErrPaymentMethodRequired):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailure
	}
}

// wait 模拟支付耗时，ctx取消时提前返回
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
