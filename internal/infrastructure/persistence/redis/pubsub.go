package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PubSubTransport Redis Pub/Sub变更信号（实现notify.Transport）
// 消息体就是写入方的origin
type PubSubTransport struct {
	client  *redis.Client
	channel string
}

// NewPubSubTransport 创建传输，channel为 <namespace>:changes
func NewPubSubTransport(client *redis.Client, namespace string) *PubSubTransport {
	return &PubSubTransport{client: client, channel: namespace + ":changes"}
}

func (t *PubSubTransport) Publish(ctx context.Context, origin string) error {
	if err := t.client.Publish(ctx, t.channel, origin).Err(); err != nil {
		return fmt.Errorf("发布变更信号失败: %w", err)
	}
	return nil
}

// Listen 订阅频道，阻塞直到ctx结束
func (t *PubSubTransport) Listen(ctx context.Context, fn func(origin string)) error {
	sub := t.client.Subscribe(ctx, t.channel)
	defer sub.Close()

	// 等待订阅确认，之后发布的消息都不会丢
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("订阅变更信号失败: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fn(msg.Payload)
		}
	}
}
