package cart

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/notify"
)

// Repository 购物车持久化接口（infrastructure层实现）
// Load返回found=false表示存储中没有购物车（或数据已损坏，按不存在处理）
type Repository interface {
	Load(ctx context.Context) (Cart, bool, error)
	Save(ctx context.Context, c Cart) error
}

// Store 购物车存储
// 纯存储，不包含任何数量或库存规则（规则都在预留引擎里）
type Store struct {
	repo     Repository
	notifier notify.Notifier
}

// NewStore 创建购物车存储
func NewStore(repo Repository, notifier notify.Notifier) *Store {
	return &Store{repo: repo, notifier: notifier}
}

// Get 读取购物车，不存在时返回空购物车
func (s *Store) Get(ctx context.Context) (Cart, error) {
	c, found, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found || c == nil {
		return Cart{}, nil
	}
	return c, nil
}

// Set 整体写入购物车并通知
func (s *Store) Set(ctx context.Context, c Cart) error {
	if c == nil {
		c = Cart{}
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}
	s.notifier.Notify(ctx)
	return nil
}
