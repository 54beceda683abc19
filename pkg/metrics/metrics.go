// Package metrics 提供基于Prometheus的指标收集
//
// # 指标分组
//
// **1. HTTP**：请求总数、耗时、处理中请求数
//
// **2. 预留（Reservation）**：加购/移除/改量/重置的结果计数，预留与归还的件数
//
// **3. 变更通知**：本地信号与存储信号的投递次数
//
// **4. 存储**：持久化数据损坏次数（按key区分）
//
// **5. 结算**：结算结果计数与耗时
//
// **6. 基础组件**：熔断器状态、Saga执行、广播消息
//
// # 使用示例
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.RecordReservation("add", metrics.ResultSuccess)
//	metrics.ReservedUnitsTotal.Add(float64(qty))
//
// # 命名规范
//
// 1. Counter以`_total`结尾
// 2. Histogram以单位结尾（`_seconds`）
// 3. 标签只用有限取值（op、result、kind），不要用product_id做标签
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 结果标签取值
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
	ResultNoop     = "noop"
)

var (
	// initOnce 防止重复注册（promauto重复注册会panic）
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 预留指标

	// ReservationsTotal 预留操作总数（Counter）
	// 标签：op（add/remove/update/reset）、result（success/failure/rejected/noop）
	ReservationsTotal *prometheus.CounterVec

	// ReservedUnitsTotal 从可用库存移入购物车的件数（Counter）
	ReservedUnitsTotal prometheus.Counter

	// ReleasedUnitsTotal 从购物车归还库存的件数（Counter）
	ReleasedUnitsTotal prometheus.Counter

	// LedgerResetsTotal 库存账本重置次数（Counter）
	LedgerResetsTotal prometheus.Counter

	// LedgerSeedsTotal 库存账本初始化次数（Counter）
	LedgerSeedsTotal prometheus.Counter

	// 变更通知指标

	// ChangeSignalsTotal 投递给订阅者的变更信号（Counter）
	// 标签：kind（local/storage）
	ChangeSignalsTotal *prometheus.CounterVec

	// StorageCorruptTotal 无法解析的持久化数据次数（Counter）
	// 标签：key
	StorageCorruptTotal *prometheus.CounterVec

	// 结算指标

	// CheckoutsTotal 结算总数（Counter）
	// 标签：result（success/failure/rejected）
	CheckoutsTotal *prometheus.CounterVec

	// CheckoutDuration 结算耗时（Histogram），包含模拟支付延迟
	CheckoutDuration prometheus.Histogram

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数（Counter）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaCompensationsTotal Saga补偿执行总数（Counter）
	SagaCompensationsTotal prometheus.Counter

	// 广播消息指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数（Counter）
	MessagesConsumedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 可以重复调用，只有第一次生效。业务代码里的Record*辅助函数
// 会先调用它，所以测试和CLI不需要显式初始化。
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_reservations_total",
			Help: "预留操作总数",
		},
		[]string{"op", "result"},
	)

	ReservedUnitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_stock_units_reserved_total",
			Help: "移入购物车的库存件数",
		},
	)

	ReleasedUnitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_stock_units_released_total",
			Help: "归还到库存的件数",
		},
	)

	LedgerResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_ledger_resets_total",
			Help: "库存账本重置次数",
		},
	)

	LedgerSeedsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_ledger_seeds_total",
			Help: "库存账本初始化次数",
		},
	)

	ChangeSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_change_signals_total",
			Help: "变更信号投递次数",
		},
		[]string{"kind"},
	)

	StorageCorruptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_storage_corrupt_total",
			Help: "无法解析的持久化数据次数",
		},
		[]string{"key"},
	)

	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "结算总数",
		},
		[]string{"result"},
	)

	CheckoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "storefront_checkout_duration_seconds",
			Help: "结算耗时（秒）",
			// 模拟支付默认2秒
			Buckets: []float64{0.1, 0.5, 1, 2, 3, 5, 10},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)
}

// RecordReservation 记录一次预留操作的结果
func RecordReservation(op, result string) {
	InitMetrics()
	ReservationsTotal.WithLabelValues(op, result).Inc()
}

// RecordUnits 记录预留（正数）或归还（负数）的件数
func RecordUnits(delta int) {
	InitMetrics()
	switch {
	case delta > 0:
		ReservedUnitsTotal.Add(float64(delta))
	case delta < 0:
		ReleasedUnitsTotal.Add(float64(-delta))
	}
}

// RecordSignal 记录一次变更信号投递
func RecordSignal(kind string) {
	InitMetrics()
	ChangeSignalsTotal.WithLabelValues(kind).Inc()
}

// RecordStorageCorrupt 记录一次持久化数据损坏
func RecordStorageCorrupt(key string) {
	InitMetrics()
	StorageCorruptTotal.WithLabelValues(key).Inc()
}

// RecordLedgerReset 记录一次账本重置
func RecordLedgerReset() {
	InitMetrics()
	LedgerResetsTotal.Inc()
}

// RecordLedgerSeed 记录一次账本初始化
func RecordLedgerSeed() {
	InitMetrics()
	LedgerSeedsTotal.Inc()
}

// RecordCheckout 记录一次结算及其耗时
func RecordCheckout(result string, seconds float64) {
	InitMetrics()
	CheckoutsTotal.WithLabelValues(result).Inc()
	CheckoutDuration.Observe(seconds)
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
