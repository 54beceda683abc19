package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化（可重复调用）
func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics()

	if ReservationsTotal == nil {
		t.Error("ReservationsTotal未初始化")
	}
	if ChangeSignalsTotal == nil {
		t.Error("ChangeSignalsTotal未初始化")
	}
	if CheckoutDuration == nil {
		t.Error("CheckoutDuration未初始化")
	}

	t.Log("✅ 所有指标初始化成功")
}

// TestRecordReservation 测试预留计数（按op/result区分）
func TestRecordReservation(t *testing.T) {
	InitMetrics()

	before := getCounterVecValue(t, ReservationsTotal, "add", ResultSuccess)
	rejected := getCounterVecValue(t, ReservationsTotal, "add", ResultRejected)

	RecordReservation("add", ResultSuccess)
	RecordReservation("add", ResultSuccess)
	RecordReservation("add", ResultRejected)

	if got := getCounterVecValue(t, ReservationsTotal, "add", ResultSuccess) - before; got != 2 {
		t.Errorf("success计数错误: expected=2, got=%f", got)
	}
	if got := getCounterVecValue(t, ReservationsTotal, "add", ResultRejected) - rejected; got != 1 {
		t.Errorf("rejected计数错误: expected=1, got=%f", got)
	}

	t.Log("✅ 预留计数测试通过")
}

// TestRecordUnits 测试预留/归还件数
func TestRecordUnits(t *testing.T) {
	InitMetrics()

	reserved := getCounterValue(t, ReservedUnitsTotal)
	released := getCounterValue(t, ReleasedUnitsTotal)

	RecordUnits(3)
	RecordUnits(-2)
	RecordUnits(0)

	if got := getCounterValue(t, ReservedUnitsTotal) - reserved; got != 3 {
		t.Errorf("预留件数错误: expected=3, got=%f", got)
	}
	if got := getCounterValue(t, ReleasedUnitsTotal) - released; got != 2 {
		t.Errorf("归还件数错误: expected=2, got=%f", got)
	}

	t.Log("✅ 件数统计测试通过")
}

// TestRecordCheckout 测试结算计数与耗时
func TestRecordCheckout(t *testing.T) {
	InitMetrics()

	count := getHistogramCount(t, CheckoutDuration)
	RecordCheckout(ResultSuccess, 2.0)
	RecordCheckout(ResultFailure, 0.1)

	if got := getHistogramCount(t, CheckoutDuration) - count; got != 2 {
		t.Errorf("结算耗时观测次数错误: expected=2, got=%d", got)
	}

	t.Log("✅ 结算指标测试通过")
}

// TestGaugeVec 测试熔断器状态
func TestGaugeVec(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "catalog"}, 1)
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "catalog-mirror"}, 0)

	var metric dto.Metric
	if err := CircuitBreakerState.WithLabelValues("catalog").Write(&metric); err != nil {
		t.Fatalf("读取GaugeVec失败: %v", err)
	}
	if metric.Gauge.GetValue() != 1 {
		t.Errorf("GaugeVec值错误: expected=1, got=%f", metric.Gauge.GetValue())
	}

	t.Log("✅ GaugeVec测试通过")
}

// 辅助函数：获取Counter值
func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("读取Counter值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// 辅助函数：获取CounterVec值
func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels ...string) float64 {
	var metric dto.Metric
	if err := counterVec.WithLabelValues(labels...).Write(&metric); err != nil {
		t.Fatalf("读取CounterVec值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

// 辅助函数：获取Histogram观测次数
func getHistogramCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	var metric dto.Metric
	if err := histogram.Write(&metric); err != nil {
		t.Fatalf("读取Histogram值失败: %v", err)
	}
	return metric.Histogram.GetSampleCount()
}
