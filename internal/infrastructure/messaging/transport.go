package messaging

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Broadcaster 广播通道（pkg/mq.Broadcaster实现）
type Broadcaster interface {
	Publish(ctx context.Context, body []byte) error
	Subscribe(ctx context.Context, ready chan<- struct{}, handler func(body []byte)) error
}

// changeMessage 变更信号消息体
// 同一个交换机可以被多个命名空间共用，按namespace过滤
type changeMessage struct {
	Namespace string `json:"namespace"`
	Origin    string `json:"origin"`
}

// Transport 基于RabbitMQ fanout的变更信号（实现notify.Transport）
type Transport struct {
	broadcaster Broadcaster
	namespace   string
	logger      *zap.Logger
	ready       chan struct{}
}

// NewTransport 创建传输
func NewTransport(b Broadcaster, namespace string, logger *zap.Logger) *Transport {
	return &Transport{
		broadcaster: b,
		namespace:   namespace,
		logger:      logger,
		ready:       make(chan struct{}),
	}
}

// Ready 队列绑定完成后关闭
func (t *Transport) Ready() <-chan struct{} {
	return t.ready
}

func (t *Transport) Publish(ctx context.Context, origin string) error {
	body, err := json.Marshal(changeMessage{Namespace: t.namespace, Origin: origin})
	if err != nil {
		return err
	}
	return t.broadcaster.Publish(ctx, body)
}

// Listen 订阅广播，阻塞直到ctx结束；同一个Transport只能Listen一次
func (t *Transport) Listen(ctx context.Context, fn func(origin string)) error {
	return t.broadcaster.Subscribe(ctx, t.ready, func(body []byte) {
		var msg changeMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			t.logger.Warn("discard malformed change message", zap.ByteString("body", body), zap.Error(err))
			return
		}
		if msg.Namespace != t.namespace {
			return
		}
		fn(msg.Origin)
	})
}
