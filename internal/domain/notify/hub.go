package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/storefront/pkg/metrics"
)

// Kind 变更信号类型
type Kind int

const (
	// KindLocal 本上下文的变更（操作完成后显式触发）
	KindLocal Kind = iota
	// KindStorage 其他上下文写入了共享存储
	KindStorage
)

func (k Kind) String() string {
	if k == KindStorage {
		return "storage"
	}
	return "local"
}

// Signal 变更信号
// 不携带任何状态增量，订阅者收到后必须重新读取账本和购物车
type Signal struct {
	Kind Kind
}

// Notifier 存储写入后调用的通知接口
type Notifier interface {
	Notify(ctx context.Context)
}

// Transport 跨上下文信号传输
// 设计说明:
// 1. 只传播写入方的origin，不传播数据
// 2. Listen阻塞直到ctx结束，回调在传输层的goroutine里执行
// 3. 实现：进程内总线、Redis Pub/Sub、PostgreSQL LISTEN/NOTIFY、RabbitMQ fanout、信号文件
type Transport interface {
	Publish(ctx context.Context, origin string) error
	Listen(ctx context.Context, fn func(origin string)) error
}

// Hub 一个执行上下文的变更通知中心
// 1. Notify：向本上下文订阅者投递Local信号，并通过Transport广播
// 2. Run：监听Transport，把其他上下文的写入转换为Storage信号（忽略自己的origin）
// 3. Batch：把一个逻辑操作中的多次写入合并为一次通知
type Hub struct {
	origin    string
	transport Transport
	logger    *zap.Logger

	mu      sync.Mutex
	subs    map[uint64]chan Signal
	nextID  uint64
	depth   int
	pending bool
}

// Option Hub配置项
type Option func(*Hub)

// WithTransport 设置跨上下文传输（默认只有本地信号）
func WithTransport(t Transport) Option {
	return func(h *Hub) { h.transport = t }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithOrigin 指定上下文标识（默认随机uuid）
func WithOrigin(origin string) Option {
	return func(h *Hub) { h.origin = origin }
}

// NewHub 创建通知中心
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		origin: uuid.NewString(),
		logger: zap.NewNop(),
		subs:   make(map[uint64]chan Signal),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Origin 本上下文标识
func (h *Hub) Origin() string {
	return h.origin
}

// Subscribe 订阅变更信号
// 返回的channel容量为1：订阅者来不及处理时多个信号合并为一个，
// 因为信号本身不带数据，合并不会丢失信息
func (h *Hub) Subscribe() (<-chan Signal, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Signal, 1)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
		})
	}
	return ch, cancel
}

// Notify 本上下文发生了写入
// 在Batch内只做标记，Batch结束时统一投递
func (h *Hub) Notify(ctx context.Context) {
	h.mu.Lock()
	if h.depth > 0 {
		h.pending = true
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	h.fire(ctx)
}

// Batch 在fn执行期间合并通知
// fn返回错误时，已经发生的写入仍然会通知（其他上下文需要看到它们）
func (h *Hub) Batch(ctx context.Context, fn func() error) error {
	h.mu.Lock()
	h.depth++
	h.mu.Unlock()

	err := fn()

	h.mu.Lock()
	h.depth--
	fire := h.depth == 0 && h.pending
	if fire {
		h.pending = false
	}
	h.mu.Unlock()

	if fire {
		h.fire(ctx)
	}
	return err
}

// Run 监听其他上下文的写入，阻塞直到ctx结束
func (h *Hub) Run(ctx context.Context) error {
	if h.transport == nil {
		return nil
	}
	return h.transport.Listen(ctx, func(origin string) {
		if origin == h.origin {
			return
		}
		h.deliver(Signal{Kind: KindStorage})
	})
}

func (h *Hub) fire(ctx context.Context) {
	h.deliver(Signal{Kind: KindLocal})

	if h.transport == nil {
		return
	}
	if err := h.transport.Publish(ctx, h.origin); err != nil {
		// 广播失败不影响本地已完成的写入，其他上下文会在下一次信号时重新读取
		h.logger.Warn("publish change signal failed", zap.String("origin", h.origin), zap.Error(err))
	}
}

func (h *Hub) deliver(s Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	metrics.RecordSignal(s.Kind.String())
	for _, ch := range h.subs {
		select {
		case ch <- s:
		default:
		}
	}
}
