package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("catalog unavailable")

// TestCircuitBreaker_ClosedState 测试关闭状态（正常）
func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := NewCircuitBreaker("catalog-closed", DefaultConfig(3, 30*time.Second))

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(func() error { return nil }))
	}

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(10), cb.Counts().TotalSuccesses)
}

// TestCircuitBreaker_Trip 测试连续失败触发熔断
func TestCircuitBreaker_Trip(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker("catalog-trip", DefaultConfig(3, 30*time.Second))
	cb.SetStateChangeCallback(func(name string, from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errUnavailable }), errUnavailable)
	}

	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, []string{"CLOSED->OPEN"}, transitions)

	// 熔断期间请求被直接拒绝，不调用下游
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called)
}

// TestCircuitBreaker_HalfOpen 测试超时后半开探测
func TestCircuitBreaker_HalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("catalog-half-open", DefaultConfig(1, 20*time.Millisecond))

	_ = cb.Execute(func() error { return errUnavailable })
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	t.Run("探测成功恢复关闭", func(t *testing.T) {
		require.NoError(t, cb.Execute(func() error { return nil }))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("探测失败重新打开", func(t *testing.T) {
		_ = cb.Execute(func() error { return errUnavailable })
		require.Equal(t, StateOpen, cb.State())
		time.Sleep(40 * time.Millisecond)
		_ = cb.Execute(func() error { return errUnavailable })
		assert.Equal(t, StateOpen, cb.State())
	})
}

// TestCircuitBreaker_CallerCancel 测试调用方取消不计入失败
func TestCircuitBreaker_CallerCancel(t *testing.T) {
	cb := NewCircuitBreaker("catalog-cancel", DefaultConfig(1, time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.ExecuteContext(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())

	t.Log("✓ 取消不触发熔断")
}
