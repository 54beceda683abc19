package memory

import (
	"context"
	"sync"
)

// Bus 进程内变更信号总线（实现notify.Transport）
// Publish同步调用所有监听者，监听者回调必须是非阻塞的（notify.Hub满足这一点）
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]func(origin string)
}

// NewBus 创建总线
func NewBus() *Bus {
	return &Bus{listeners: make(map[uint64]func(string))}
}

func (b *Bus) Publish(_ context.Context, origin string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, fn := range b.listeners {
		fn(origin)
	}
	return nil
}

// Listen 注册监听，阻塞直到ctx结束
func (b *Bus) Listen(ctx context.Context, fn func(origin string)) error {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	delete(b.listeners, id)
	b.mu.Unlock()
	return nil
}

// Listeners 当前监听者数量
func (b *Bus) Listeners() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
