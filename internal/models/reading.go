package models

// RawRecord 数据源推送的原始记录（字段名、单位不统一，仅在标准化前存在）
type RawRecord map[string]interface{}

// CanonicalReading 标准化后的生命体征读数
// 数值字段使用指针表示"缺失"（nil），下游永远不会看到 NaN
type CanonicalReading struct {
	Timestamp int64 `json:"timestamp"` // 毫秒时间戳

	HeartRate              *float64 `json:"heart_rate,omitempty"`               // bpm
	SpO2                   *float64 `json:"spo2,omitempty"`                     // %
	BodyTemp               *float64 `json:"body_temp,omitempty"`                // °C
	AmbientTemp            *float64 `json:"ambient_temp,omitempty"`             // °C
	AccMagnitude           *float64 `json:"acc_magnitude,omitempty"`            // g
	BloodSugar             *float64 `json:"blood_sugar,omitempty"`              // mg/dL
	BloodPressureSystolic  *float64 `json:"blood_pressure_systolic,omitempty"`  // mmHg
	BloodPressureDiastolic *float64 `json:"blood_pressure_diastolic,omitempty"` // mmHg

	FallDetected bool `json:"fall_detected"`
}

// Metric 指标名（与 ThresholdBand 配置、AlertEvent.Parameter 一致）
type Metric string

const (
	MetricHeartRate              Metric = "heart_rate"
	MetricSpO2                   Metric = "spo2"
	MetricBodyTemp               Metric = "body_temp"
	MetricAmbientTemp            Metric = "ambient_temp"
	MetricAccMagnitude           Metric = "acc_magnitude"
	MetricBloodSugar             Metric = "blood_sugar"
	MetricBloodPressureSystolic  Metric = "blood_pressure_systolic"
	MetricBloodPressureDiastolic Metric = "blood_pressure_diastolic"
	MetricFallDetected           Metric = "fall_detected"
)

// Value 按指标名取读数值（fall_detected 不是数值指标，返回 nil）
func (r *CanonicalReading) Value(m Metric) *float64 {
	switch m {
	case MetricHeartRate:
		return r.HeartRate
	case MetricSpO2:
		return r.SpO2
	case MetricBodyTemp:
		return r.BodyTemp
	case MetricAmbientTemp:
		return r.AmbientTemp
	case MetricAccMagnitude:
		return r.AccMagnitude
	case MetricBloodSugar:
		return r.BloodSugar
	case MetricBloodPressureSystolic:
		return r.BloodPressureSystolic
	case MetricBloodPressureDiastolic:
		return r.BloodPressureDiastolic
	default:
		return nil
	}
}

// SetValue 按指标名写入读数值（平滑滤波使用）
func (r *CanonicalReading) SetValue(m Metric, v float64) {
	val := v
	switch m {
	case MetricHeartRate:
		r.HeartRate = &val
	case MetricSpO2:
		r.SpO2 = &val
	case MetricBodyTemp:
		r.BodyTemp = &val
	case MetricAmbientTemp:
		r.AmbientTemp = &val
	case MetricAccMagnitude:
		r.AccMagnitude = &val
	case MetricBloodSugar:
		r.BloodSugar = &val
	case MetricBloodPressureSystolic:
		r.BloodPressureSystolic = &val
	case MetricBloodPressureDiastolic:
		r.BloodPressureDiastolic = &val
	}
}

// Status 单指标相对阈值区间的状态
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// ThresholdBand 单指标阈值区间（启动时加载，运行期只读）
type ThresholdBand struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}
