package checkout

import (
	"context"

	appcart "github.com/xiebiao/storefront/internal/application/cart"
	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// QuoteUseCase 结算报价：小计 + 运费
type QuoteUseCase struct {
	carts    *cart.Store
	settings Settings
}

// NewQuoteUseCase 创建报价用例
func NewQuoteUseCase(carts *cart.Store, settings Settings) *QuoteUseCase {
	return &QuoteUseCase{
		carts:    carts,
		settings: settings,
	}
}

// Quote 报价结果
type Quote struct {
	appcart.View
	PaymentMethods []string `json:"payment_methods"`
}

// Execute 购物车为空返回ErrEmptyCart
func (uc *QuoteUseCase) Execute(ctx context.Context) (q *Quote, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Quote")
	defer func() { tracing.EndSpan(span, err) }()

	lines, err := uc.carts.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, reservation.ErrEmptyCart
	}

	return &Quote{
		View:           appcart.NewView(lines, uc.settings.Pricing),
		PaymentMethods: uc.settings.PaymentMethods,
	}, nil
}
