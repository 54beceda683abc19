package memory

import (
	"context"
)

// Locker 进程内的存储级单写锁（实现reservation.Locker）
// 与带超时的Mutex等价：Acquire可被ctx取消
type Locker struct {
	sem chan struct{}
}

// NewLocker 创建锁
func NewLocker() *Locker {
	return &Locker{sem: make(chan struct{}, 1)}
}

func (l *Locker) Acquire(ctx context.Context) (func(context.Context) error, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return func(context.Context) error {
		<-l.sem
		return nil
	}, nil
}
