package ledger

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/cart"
	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/notify"
	"github.com/xiebiao/storefront/pkg/metrics"
)

// Repository 账本持久化接口（infrastructure层实现）
// Load返回found=false表示存储中没有账本（损坏的数据也按不存在处理）
type Repository interface {
	Load(ctx context.Context) (Ledger, bool, error)
	Save(ctx context.Context, l Ledger) error
}

// Store 库存账本存储
type Store struct {
	repo     Repository
	notifier notify.Notifier
}

// NewStore 创建账本存储
func NewStore(repo Repository, notifier notify.Notifier) *Store {
	return &Store{repo: repo, notifier: notifier}
}

// Get 读取账本
// 账本不存在时返回(nil, false, nil)，绝不会用0自动填充，调用方需显式Seed
func (s *Store) Get(ctx context.Context) (Ledger, bool, error) {
	l, found, err := s.repo.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	if l == nil {
		l = Ledger{}
	}
	return l, true, nil
}

// Seed 按目录基础库存初始化账本
// 只应在账本不存在或显式重置时调用
func (s *Store) Seed(ctx context.Context, products []catalog.Product) (Ledger, error) {
	l := Seed(products)
	if err := s.Set(ctx, l); err != nil {
		return nil, err
	}
	metrics.RecordLedgerSeed()
	return l, nil
}

// Set 整体写入账本并通知（唯一的写入路径）
func (s *Store) Set(ctx context.Context, l Ledger) error {
	if l == nil {
		l = Ledger{}
	}
	if err := s.repo.Save(ctx, l); err != nil {
		return err
	}
	s.notifier.Notify(ctx)
	return nil
}

// Reset 按目录和当前购物车重新推导账本
// 与其他上下文看到的账本相比，库存可能变多也可能变少，所以必须由用户确认后发起
func (s *Store) Reset(ctx context.Context, products []catalog.Product, c cart.Cart) (Ledger, error) {
	l := Derive(products, c)
	if err := s.Set(ctx, l); err != nil {
		return nil, err
	}
	metrics.RecordLedgerReset()
	return l, nil
}
