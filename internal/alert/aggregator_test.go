package alert_test

import (
	"testing"
	"time"

	"vitals-monitor/internal/alert"
	"vitals-monitor/internal/models"

	"github.com/stretchr/testify/require"
)

var testBands = map[models.Metric]models.ThresholdBand{
	models.MetricHeartRate: {Min: 60, Max: 100, Unit: "bpm"},
	models.MetricSpO2:      {Min: 95, Max: 100, Unit: "%"},
}

func newAggregator() *alert.Aggregator {
	return alert.NewAggregator(alert.NewEventBuilder("patient-1"))
}

func criticalReading(ts int64) *models.CanonicalReading {
	r := &models.CanonicalReading{Timestamp: ts}
	r.SetValue(models.MetricHeartRate, 130) // > 100×1.1 → critical
	return r
}

func TestCheckEmergency_CooldownScenario(t *testing.T) {
	agg := newAggregator()
	cooldown := 5 * time.Minute
	t0 := time.Now()

	// 第一条 critical 读数触发报警
	events := agg.CheckEmergency(criticalReading(1000), testBands, time.Time{}, cooldown, t0)
	require.Len(t, events, 1)
	require.Equal(t, models.MetricHeartRate, events[0].Parameter)

	// 调用方推进 lastAlertAt = t0；1 秒后的 critical 读数被冷却抑制
	events = agg.CheckEmergency(criticalReading(2000), testBands, t0, cooldown, t0.Add(time.Second))
	require.Empty(t, events)

	// 6 分钟后冷却结束，再次触发
	events = agg.CheckEmergency(criticalReading(3000), testBands, t0, cooldown, t0.Add(6*time.Minute))
	require.Len(t, events, 1)
}

func TestCheckEmergency_WarningDoesNotFire(t *testing.T) {
	agg := newAggregator()

	r := &models.CanonicalReading{Timestamp: 1000}
	r.SetValue(models.MetricHeartRate, 105) // warning，不到 critical

	events := agg.CheckEmergency(r, testBands, time.Time{}, 5*time.Minute, time.Now())
	require.Empty(t, events)
}

func TestCheckEmergency_CollectsAllCriticalMetrics(t *testing.T) {
	agg := newAggregator()

	r := &models.CanonicalReading{Timestamp: 1000}
	r.SetValue(models.MetricHeartRate, 130) // critical
	r.SetValue(models.MetricSpO2, 80)       // < 95×0.9=85.5 → critical

	events := agg.CheckEmergency(r, testBands, time.Time{}, 5*time.Minute, time.Now())
	require.Len(t, events, 2)

	params := map[models.Metric]bool{}
	for _, e := range events {
		params[e.Parameter] = true
		require.NotEmpty(t, e.EventID)
		require.Equal(t, "patient-1", e.PatientID)
		require.Equal(t, models.AlertStatusActive, e.AlertStatus)
		require.Equal(t, int64(1000), e.Timestamp)
	}
	require.True(t, params[models.MetricHeartRate])
	require.True(t, params[models.MetricSpO2])
}

func TestCheckEmergency_FallDetectedUnconditional(t *testing.T) {
	agg := newAggregator()

	// 所有指标正常，仅跌倒标志为真
	r := &models.CanonicalReading{Timestamp: 1000, FallDetected: true}
	r.SetValue(models.MetricHeartRate, 80)

	events := agg.CheckEmergency(r, testBands, time.Time{}, 5*time.Minute, time.Now())
	require.Len(t, events, 1)
	require.Equal(t, models.MetricFallDetected, events[0].Parameter)
	require.Nil(t, events[0].Value)
}

func TestCheckEmergency_FallSuppressedDuringCooldown(t *testing.T) {
	agg := newAggregator()
	t0 := time.Now()

	r := &models.CanonicalReading{Timestamp: 1000, FallDetected: true}

	events := agg.CheckEmergency(r, testBands, t0, 5*time.Minute, t0.Add(time.Second))
	require.Empty(t, events)
}

func TestCheckEmergency_AbsentMetricsSkipped(t *testing.T) {
	agg := newAggregator()

	// 全部缺失：不产生事件
	r := &models.CanonicalReading{Timestamp: 1000}

	events := agg.CheckEmergency(r, testBands, time.Time{}, 5*time.Minute, time.Now())
	require.Empty(t, events)
}

func TestEventBuilder_UniqueEventIDs(t *testing.T) {
	builder := alert.NewEventBuilder("patient-1")
	band := models.ThresholdBand{Min: 60, Max: 100, Unit: "bpm"}

	v := 130.0
	e1 := builder.Build(models.MetricHeartRate, &v, band, 1000)
	e2 := builder.Build(models.MetricHeartRate, &v, band, 1000)

	require.NotEqual(t, e1.EventID, e2.EventID)
	require.Equal(t, band, e1.Threshold)
	require.Equal(t, 130.0, *e1.Value)
}
