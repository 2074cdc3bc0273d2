package threshold

import "vitals-monitor/internal/models"

// 年龄档位
const (
	AgeGroupChild   = "child"
	AgeGroupAdult   = "adult"
	AgeGroupElderly = "elderly"
)

// DefaultBands 默认（成人）阈值区间，启动时加载，运行期只读
func DefaultBands() map[models.Metric]models.ThresholdBand {
	return map[models.Metric]models.ThresholdBand{
		models.MetricHeartRate:              {Min: 60, Max: 100, Unit: "bpm"},
		models.MetricSpO2:                   {Min: 95, Max: 100, Unit: "%"},
		models.MetricBodyTemp:               {Min: 36.1, Max: 37.2, Unit: "°C"},
		models.MetricAmbientTemp:            {Min: 18, Max: 30, Unit: "°C"},
		models.MetricBloodSugar:             {Min: 70, Max: 140, Unit: "mg/dL"},
		models.MetricBloodPressureSystolic:  {Min: 90, Max: 120, Unit: "mmHg"},
		models.MetricBloodPressureDiastolic: {Min: 60, Max: 80, Unit: "mmHg"},
	}
}

// BandsForAgeGroup 按年龄档位返回阈值区间
// 仅心率与血压随年龄调整，其余指标沿用默认区间
func BandsForAgeGroup(ageGroup string) map[models.Metric]models.ThresholdBand {
	bands := DefaultBands()

	switch ageGroup {
	case AgeGroupChild:
		bands[models.MetricHeartRate] = models.ThresholdBand{Min: 70, Max: 120, Unit: "bpm"}
		bands[models.MetricBloodPressureSystolic] = models.ThresholdBand{Min: 85, Max: 115, Unit: "mmHg"}
		bands[models.MetricBloodPressureDiastolic] = models.ThresholdBand{Min: 55, Max: 75, Unit: "mmHg"}
	case AgeGroupElderly:
		bands[models.MetricHeartRate] = models.ThresholdBand{Min: 55, Max: 95, Unit: "bpm"}
		bands[models.MetricBloodPressureSystolic] = models.ThresholdBand{Min: 95, Max: 135, Unit: "mmHg"}
		bands[models.MetricBloodPressureDiastolic] = models.ThresholdBand{Min: 60, Max: 85, Unit: "mmHg"}
	}

	return bands
}
