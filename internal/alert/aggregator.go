package alert

import (
	"time"

	"vitals-monitor/internal/models"
	"vitals-monitor/internal/threshold"
)

// Aggregator 紧急状况聚合器
// 纯逻辑，不做任何 I/O：冷却状态的推进与报警分发由调用方负责
type Aggregator struct {
	builder *EventBuilder
}

// NewAggregator 创建聚合器
func NewAggregator(builder *EventBuilder) *Aggregator {
	return &Aggregator{builder: builder}
}

// CheckEmergency 扫描一条读数的所有配置指标，收集 critical 级别的越界
// 冷却窗口未结束时返回空列表（抑制重复通知风暴）
// 跌倒事件只要 FallDetected 为真就无条件加入（仍受冷却门控）
// 调用方约定：仅在返回非空列表时推进 lastAlertAt
func (a *Aggregator) CheckEmergency(
	reading *models.CanonicalReading,
	bands map[models.Metric]models.ThresholdBand,
	lastAlertAt time.Time,
	cooldown time.Duration,
	now time.Time,
) []models.AlertEvent {
	// 冷却门控：Idle → Cooldown 在分发时切换，Cooldown → Idle 靠时间流逝
	if now.Sub(lastAlertAt) < cooldown {
		return nil
	}

	var events []models.AlertEvent

	for metric, band := range bands {
		value := reading.Value(metric)
		if value == nil {
			continue
		}
		if threshold.Evaluate(value, band) == models.StatusCritical {
			events = append(events, a.builder.Build(metric, value, band, reading.Timestamp))
		}
	}

	if reading.FallDetected {
		events = append(events, a.builder.Build(models.MetricFallDetected, nil, models.ThresholdBand{}, reading.Timestamp))
	}

	return events
}
