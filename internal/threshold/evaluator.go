package threshold

import (
	"math"

	"vitals-monitor/internal/models"
)

// 临界判定系数：低于 min×0.9 或高于 max×1.1 视为 critical
const (
	criticalLowFactor  = 0.9
	criticalHighFactor = 1.1
)

// Evaluate 把单个指标值对照阈值区间分级
// 纯函数：相同输入必定产生相同输出（UI 状态稳定性依赖这一点）
func Evaluate(value *float64, band models.ThresholdBand) models.Status {
	if value == nil {
		return models.StatusUnknown
	}
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.StatusUnknown
	}

	if v < band.Min {
		if v < band.Min*criticalLowFactor {
			return models.StatusCritical
		}
		return models.StatusWarning
	}

	if v > band.Max {
		if v > band.Max*criticalHighFactor {
			return models.StatusCritical
		}
		return models.StatusWarning
	}

	return models.StatusNormal
}

// EvaluateReading 对一条读数的所有配置指标分级
func EvaluateReading(reading *models.CanonicalReading, bands map[models.Metric]models.ThresholdBand) map[models.Metric]models.Status {
	result := make(map[models.Metric]models.Status, len(bands))
	for metric, band := range bands {
		result[metric] = Evaluate(reading.Value(metric), band)
	}
	return result
}
