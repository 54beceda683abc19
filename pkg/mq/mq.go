// Package mq 基于RabbitMQ fanout交换机的广播
//
// 与点对点队列不同，广播要求每个订阅者都收到每条消息：
// 每次Subscribe都会声明一个服务端命名的独占临时队列并绑定到fanout交换机，
// 连接断开时队列自动删除。
//
//	Publisher ──> [fanout exchange] ──┬──> amq.gen-A ──> 订阅者A
//	                                  └──> amq.gen-B ──> 订阅者B
package mq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/storefront/pkg/metrics"
)

// Broadcaster fanout广播器
// 发布和订阅使用不同的Channel
type Broadcaster struct {
	conn     *amqp.Connection
	pubMu    sync.Mutex
	pubCh    *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewBroadcaster 连接RabbitMQ并声明fanout交换机
func NewBroadcaster(url, exchange string, logger *zap.Logger) (*Broadcaster, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // Exchange名称
		"fanout", // 广播
		true,     // Durable
		false,    // AutoDelete
		false,    // Internal
		false,    // NoWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	metrics.InitMetrics()
	logger.Info("broadcaster ready", zap.String("exchange", exchange))

	return &Broadcaster{
		conn:     conn,
		pubCh:    ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// Publish 广播一条消息
// 变更信号没有持久化价值，使用Transient投递模式
func (b *Broadcaster) Publish(ctx context.Context, body []byte) error {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	err := b.pubCh.PublishWithContext(
		ctx,
		b.exchange,
		"",    // fanout忽略RoutingKey
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			Body:         body,
			DeliveryMode: amqp.Transient,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{"exchange": b.exchange})
	return nil
}

// Subscribe 订阅广播，阻塞直到ctx取消或连接关闭
// ready在队列绑定完成后被关闭（可为nil），之后发布的消息保证能收到
func (b *Broadcaster) Subscribe(ctx context.Context, ready chan<- struct{}, handler func(body []byte)) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("创建Channel失败: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"",    // 服务端命名
		false, // Durable
		true,  // AutoDelete
		true,  // Exclusive
		false, // NoWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("声明Queue失败: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", b.exchange, false, nil); err != nil {
		return fmt.Errorf("绑定Queue失败: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",    // Consumer标签
		true,  // AutoAck，信号丢失只会少一次重新读取
		true,  // Exclusive
		false, // NoLocal（RabbitMQ不支持）
		false, // NoWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	if ready != nil {
		close(ready)
	}
	b.logger.Debug("broadcast subscribed", zap.String("queue", q.Name))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("消息Channel已关闭")
			}
			handler(msg.Body)
			metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": "broadcast", "result": metrics.ResultSuccess})
		}
	}
}

// Close 关闭连接
func (b *Broadcaster) Close() error {
	if b.pubCh != nil {
		b.pubCh.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
