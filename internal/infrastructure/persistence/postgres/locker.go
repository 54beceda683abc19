package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Locker 基于会话级advisory lock的存储级单写锁（实现reservation.Locker）
// 锁绑定在连接上：持有期间独占一个连接，连接断开时数据库自动释放
type Locker struct {
	pool *pgxpool.Pool
	key  int64
}

// NewLocker 创建锁，锁号由命名空间哈希得到
func NewLocker(pool *pgxpool.Pool, namespace string) *Locker {
	h := fnv.New64a()
	h.Write([]byte(namespace + ":lock"))
	return &Locker{pool: pool, key: int64(h.Sum64())}
}

func (l *Locker) Acquire(ctx context.Context) (func(context.Context) error, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("pool.Acquire: %w", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, l.key); err != nil {
		conn.Release()
		return nil, fmt.Errorf("pg_advisory_lock: %w", err)
	}

	return func(ctx context.Context) error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, l.key); err != nil {
			return fmt.Errorf("pg_advisory_unlock: %w", err)
		}
		return nil
	}, nil
}
