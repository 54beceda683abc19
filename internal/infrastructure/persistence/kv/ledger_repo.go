package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/storefront/internal/domain/ledger"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
	"github.com/xiebiao/storefront/pkg/metrics"
)

// LedgerRepository 库存账本仓储（实现ledger.Repository）
// 存储格式：{"<productId>": remainingUnits}
type LedgerRepository struct {
	store  Store
	key    string
	logger *zap.Logger
}

// NewLedgerRepository 创建账本仓储
func NewLedgerRepository(store Store, namespace string, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{store: store, key: LedgerKey(namespace), logger: logger}
}

// Load 读取账本
// 数据无法解析时记录StorageCorrupt并按不存在处理（触发重新Seed），不向上返回错误
func (r *LedgerRepository) Load(ctx context.Context) (ledger.Ledger, bool, error) {
	data, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, false, apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "读取库存账本失败")
	}
	if !found {
		return nil, false, nil
	}

	l, err := decodeLedger(data)
	if err != nil {
		corrupt(r.logger, r.key, err)
		return nil, false, nil
	}
	return l, true, nil
}

// Save 整体写入账本
func (r *LedgerRepository) Save(ctx context.Context, l ledger.Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return apperrors.Wrap(err, "序列化库存账本失败")
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeStorageError, "写入库存账本失败")
	}
	return nil
}

func decodeLedger(data []byte) (ledger.Ledger, error) {
	var l ledger.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	if l == nil {
		// JSON null
		return nil, fmt.Errorf("ledger is null")
	}
	for id, n := range l {
		if id == 0 || n < 0 {
			return nil, fmt.Errorf("invalid entry %d=%d", id, n)
		}
	}
	return l, nil
}

func corrupt(logger *zap.Logger, key string, err error) {
	metrics.RecordStorageCorrupt(key)
	logger.Warn("storage corrupt, treating as absent",
		zap.String("key", key),
		zap.Int("code", apperrors.ErrCodeStorageCorrupt),
		zap.Error(err))
}
