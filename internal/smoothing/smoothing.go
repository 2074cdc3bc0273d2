package smoothing

import (
	"math"

	"vitals-monitor/internal/models"
)

// Rule 单指标的跳变抑制规则
type Rule struct {
	Metric        models.Metric
	JumpThreshold float64 // 相邻两个采样之间允许的最大跳变
	Damping       float64 // 超出阈值时的阻尼系数
}

// Rules 各指标的跳变阈值与阻尼系数
// 经验常数，沿用原值，不重新推导（临床依据未给出，只作显示抖动抑制）
var Rules = []Rule{
	{models.MetricHeartRate, 20, 0.3},
	{models.MetricSpO2, 5, 0.2},
	{models.MetricBodyTemp, 0.5, 0.3},
	{models.MetricBloodSugar, 20, 0.3},
	{models.MetricBloodPressureSystolic, 15, 0.3},
	{models.MetricBloodPressureDiastolic, 10, 0.3},
}

// windowSize 平滑窗口：最近 3 条读数
const windowSize = 3

// Smooth 抑制窗口内的单采样尖峰，返回新的切片（不修改输入）
// 对最近 windowSize 条读数从新到旧逐相邻对检查：
// 跳变超过阈值时，当前值替换为 prev + (cur-prev) × damping
func Smooth(readings []models.CanonicalReading) []models.CanonicalReading {
	out := make([]models.CanonicalReading, len(readings))
	copy(out, readings)

	if len(out) < 2 {
		return out
	}

	start := len(out) - windowSize
	if start < 0 {
		start = 0
	}

	// 从新到旧处理相邻对 (i, i-1)
	for i := len(out) - 1; i > start; i-- {
		cur := &out[i]
		prev := &out[i-1]

		for _, rule := range Rules {
			curV := cur.Value(rule.Metric)
			prevV := prev.Value(rule.Metric)
			if curV == nil || prevV == nil {
				continue
			}
			delta := *curV - *prevV
			if math.Abs(delta) > rule.JumpThreshold {
				cur.SetValue(rule.Metric, *prevV+delta*rule.Damping)
			}
		}
	}

	return out
}
