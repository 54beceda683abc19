// Package circuitbreaker 熔断器
//
// 用于保护对外部资源（远程商品目录）的调用：连续失败达到阈值后熔断，
// 熔断期间直接返回ErrOpenState，不再请求下游；超时后进入半开状态放行少量探测请求。
//
// 状态机：
//
//	CLOSED --失败达到阈值--> OPEN --超时--> HALF_OPEN --探测成功--> CLOSED
//	                                           └--探测失败--> OPEN
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xiebiao/storefront/pkg/metrics"
)

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态允许通过的最大请求数
	MaxRequests uint32
	// Interval 关闭状态下统计窗口长度，到期清零计数
	Interval time.Duration
	// Timeout 打开状态持续时间，到期进入半开
	Timeout time.Duration
	// ReadyToTrip 关闭状态下每次失败后调用，返回true则熔断
	ReadyToTrip func(counts Counts) bool
}

// DefaultConfig 连续失败maxFailures次熔断
func DefaultConfig(maxFailures uint32, timeout time.Duration) Config {
	return Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
}

// Counts 请求统计
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) reset() {
	*c = Counts{}
}

func (c *Counts) onSuccess() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// CircuitBreaker 熔断器
type CircuitBreaker struct {
	name        string
	maxRequests uint32
	interval    time.Duration
	timeout     time.Duration
	readyToTrip func(counts Counts) bool

	mu         sync.Mutex
	state      State
	generation uint64 // 每次状态切换递增，丢弃跨代的请求结果
	counts     Counts
	expiry     time.Time

	onStateChange func(name string, from State, to State)
}

// ErrOpenState 熔断器打开时返回
var ErrOpenState = errors.New("circuit breaker is open")

// NewCircuitBreaker 创建熔断器
// 状态变化会同步到circuit_breaker_state指标
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	if config.MaxRequests == 0 {
		config.MaxRequests = 1
	}
	if config.ReadyToTrip == nil {
		config.ReadyToTrip = func(counts Counts) bool { return counts.ConsecutiveFailures > 5 }
	}

	cb := &CircuitBreaker{
		name:        name,
		maxRequests: config.MaxRequests,
		interval:    config.Interval,
		timeout:     config.Timeout,
		readyToTrip: config.ReadyToTrip,
		state:       StateClosed,
	}
	if config.Interval > 0 {
		cb.expiry = time.Now().Add(config.Interval)
	}

	metrics.InitMetrics()
	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(StateClosed))
	return cb
}

// SetStateChangeCallback 设置状态变化回调（如记录日志）
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(name string, from State, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute 通过熔断器执行请求
func (cb *CircuitBreaker) Execute(req func() error) error {
	return cb.ExecuteContext(context.Background(), func(context.Context) error { return req() })
}

// ExecuteContext 通过熔断器执行请求
// 调用方主动取消（ctx.Err()）不计为下游失败
func (cb *CircuitBreaker) ExecuteContext(ctx context.Context, req func(ctx context.Context) error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		cb.record("rejected")
		return err
	}

	err = req(ctx)
	success := err == nil || (ctx.Err() != nil && errors.Is(err, ctx.Err()))
	cb.afterRequest(generation, success)

	if err != nil {
		cb.record("failure")
	} else {
		cb.record("success")
	}
	return err
}

func (cb *CircuitBreaker) record(result string) {
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": cb.name, "result": result})
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.currentState(time.Now())
	if state == StateOpen {
		return generation, ErrOpenState
	}
	if state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests {
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.onSuccess()
		if state == StateHalfOpen {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.onFailure()
	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts.reset()
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts.reset()

	switch state {
	case StateClosed:
		if cb.interval > 0 {
			cb.expiry = now.Add(cb.interval)
		} else {
			cb.expiry = time.Time{}
		}
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": cb.name}, float64(state))
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	state, _ := cb.currentState(time.Now())
	return state
}

// Counts 当前统计
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}
