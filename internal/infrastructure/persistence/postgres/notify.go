package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotifyTransport 基于LISTEN/NOTIFY的变更信号（实现notify.Transport）
type NotifyTransport struct {
	pool    *pgxpool.Pool
	channel string
}

// NewNotifyTransport 创建传输，channel为 <namespace>_changes
func NewNotifyTransport(pool *pgxpool.Pool, namespace string) *NotifyTransport {
	return &NotifyTransport{pool: pool, channel: namespace + "_changes"}
}

func (t *NotifyTransport) Publish(ctx context.Context, origin string) error {
	if _, err := t.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, t.channel, origin); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

// Listen 独占一个连接执行LISTEN，阻塞直到ctx结束
func (t *NotifyTransport) Listen(ctx context.Context, fn func(origin string)) error {
	conn, err := t.pool.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("pool.Acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{t.channel}.Sanitize()); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// 等待被取消的连接已被pgx关闭，Release时连接池会丢弃它
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		fn(n.Payload)
	}
}
