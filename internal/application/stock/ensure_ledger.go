package stock

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/ledger"
	"github.com/xiebiao/storefront/internal/domain/reservation"
	"github.com/xiebiao/storefront/pkg/tracing"
)

const tracerName = "storefront/stock"

// EnsureLedgerUseCase 会话启动：账本不存在时按目录初始化
// 设计说明:
// 1. 每次"打开页面"（API列表查询、CLI启动）都会走这里
// 2. 账本存在时原样返回，不做任何写入
// 3. 账本损坏在仓储层已被视为不存在，这里会重新初始化
// 4. 检查和初始化交给引擎在锁内完成，与加入购物车等操作串行
type EnsureLedgerUseCase struct {
	engine  *reservation.Engine
	logger  *zap.Logger
}

// NewEnsureLedgerUseCase 创建账本初始化用例
func NewEnsureLedgerUseCase(engine *reservation.Engine, logger *zap.Logger) *EnsureLedgerUseCase {
	return &EnsureLedgerUseCase{
		engine:  engine,
		logger:  logger,
	}
}

// Execute 返回当前账本，seeded表示本次是否新建
func (uc *EnsureLedgerUseCase) Execute(ctx context.Context, products []catalog.Product) (l ledger.Ledger, seeded bool, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "EnsureLedger")
	defer func() { tracing.EndSpan(span, err) }()

	l, seeded, err = uc.engine.EnsureLedger(ctx, products)
	if err != nil {
		return nil, false, err
	}
	if seeded {
		uc.logger.Info("stock ledger seeded from catalog", zap.Int("products", len(products)))
	}
	return l, seeded, nil
}
