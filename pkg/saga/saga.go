// Package saga 顺序执行一组步骤，任一步骤失败时按逆序补偿已完成的步骤
//
// 结算流程用它串联"进入处理状态 → 模拟支付 → 清空购物车"：
// 支付被取消或清空失败时，补偿会退出处理状态，购物车保持原样。
package saga

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/storefront/pkg/metrics"
)

// Step 一个步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可为nil
}

// Saga 步骤编排器（一次性使用）
type Saga struct {
	steps    []Step
	executed []Step
	timeout  time.Duration
	logger   *zap.Logger
}

// Option Saga选项
type Option func(*Saga)

// WithLogger 设置日志（补偿失败时记录）
func WithLogger(logger *zap.Logger) Option {
	return func(s *Saga) {
		s.logger = logger
	}
}

// NewSaga 创建Saga，timeout<=0表示只受调用方ctx约束
func NewSaga(timeout time.Duration, opts ...Option) *Saga {
	s := &Saga{
		steps:   make([]Step, 0, 4),
		timeout: timeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStep 添加步骤
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行所有步骤
//
// 1. 每个步骤开始前检查ctx，已取消则补偿并返回
// 2. 步骤失败时补偿之前已成功的步骤（失败步骤自身不补偿）
// 3. 补偿使用独立的Context，避免因原ctx已取消而无法补偿
func (s *Saga) Execute(ctx context.Context) error {
	metrics.InitMetrics()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensate()
			metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": metrics.ResultFailure})
			return fmt.Errorf("saga已取消: %w", err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate()
				metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": metrics.ResultFailure})
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}

		s.executed = append(s.executed, step)
	}

	metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": metrics.ResultSuccess})
	return nil
}

func (s *Saga) compensate() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		metrics.IncCounter(metrics.SagaCompensationsTotal)
		if err := step.Compensate(ctx); err != nil {
			s.logger.Warn("saga compensation failed", zap.String("step", step.Name), zap.Error(err))
		}
	}
	s.executed = nil
}
