package stock

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/pkg/tracing"
)

// ResetStockUseCase 重置库存账本
// 教学要点:
// 1. 重置是破坏性操作（其他上下文的预留会被覆盖），必须由用户显式确认
// 2. 新账本 = 基础库存 - 当前购物车数量，下限为0
// 3. 购物车中有目录里不存在的商品时，该商品剩余记为0
type ResetStockUseCase struct {
	loader catalog.Loader
	engine *reservation.Engine
	logger *zap.Logger
}

// NewResetStockUseCase 创建库存重置用例
func NewResetStockUseCase(loader catalog.Loader, engine *reservation.Engine, logger *zap.Logger) *ResetStockUseCase {
	return &ResetStockUseCase{
		loader: loader,
		engine: engine,
		logger: logger,
	}
}

// ResetStockRequest 重置请求
type ResetStockRequest struct {
	Confirm bool
}

// ResetStockResponse 重置后的账本
type ResetStockResponse struct {
	Remaining map[uint]int `json:"remaining"`
}

// Execute 执行重置
func (uc *ResetStockUseCase) Execute(ctx context.Context, req ResetStockRequest) (resp *ResetStockResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ResetStock")
	defer func() { tracing.EndSpan(span, err) }()

	// 1. 未确认直接拒绝，不读取任何数据
	if !req.Confirm {
		return nil, reservation.ErrResetNotConfirmed
	}

	// 2. 目录不可用时不重置
	products, err := uc.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	// 3. 按当前购物车推导新账本
	l, err := uc.engine.ResetLedger(ctx, products)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("stock ledger reset", zap.Int("products", len(l)))
	return &ResetStockResponse{Remaining: map[uint]int(l)}, nil
}
