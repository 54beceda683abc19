package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker 存储级单写锁（实现reservation.Locker）
// 设计说明:
// 1. SET key token NX PX ttl 获取锁，ttl防止持有者崩溃后死锁
// 2. 释放时用Lua脚本比较token，避免删除别人的锁
// 3. 获取失败按retry间隔轮询，直到ctx结束
type Locker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	retry  time.Duration
}

// NewLocker 创建锁，key为 <namespace>:lock
func NewLocker(client *redis.Client, namespace string, ttl, retry time.Duration) *Locker {
	if retry <= 0 {
		retry = 20 * time.Millisecond
	}
	return &Locker{client: client, key: namespace + ":lock", ttl: ttl, retry: retry}
}

func (l *Locker) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("获取存储锁失败: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
		if err != nil {
			return fmt.Errorf("释放存储锁失败: %w", err)
		}
		if n == 0 {
			return errors.New("存储锁已过期或被其他上下文持有")
		}
		return nil
	}, nil
}
