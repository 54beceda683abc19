package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/storefront/internal/domain/notify"
)

// EventsHandler 变更信号推送（Server-Sent Events）
//
// 信号不带数据，客户端收到change后重新请求/cart和/products。
// 同一个执行上下文的写入推送kind=local，其他上下文的写入推送kind=storage。
type EventsHandler struct {
	hub       *notify.Hub
	heartbeat time.Duration
}

// NewEventsHandler 创建推送处理器，heartbeat<=0时不发送心跳
func NewEventsHandler(hub *notify.Hub, heartbeat time.Duration) *EventsHandler {
	return &EventsHandler{
		hub:       hub,
		heartbeat: heartbeat,
	}
}

// Stream 订阅变更信号
// @Summary      订阅变更信号
// @Description  SSE流：ready（连接建立）、change（账本或购物车变化）、ping（心跳）
// @Tags         推送
// @Produce      text/event-stream
// @Router       /api/v1/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	signals, cancel := h.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"context_id": h.hub.Origin()})
	c.Writer.Flush()

	var ping <-chan time.Time
	if h.heartbeat > 0 {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		ping = ticker.C
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-signals:
			c.SSEvent("change", gin.H{"kind": s.Kind.String()})
		case <-ping:
			c.SSEvent("ping", gin.H{"time": time.Now().Unix()})
		}
		c.Writer.Flush()
	}
}
