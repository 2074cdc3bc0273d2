package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"vitals-monitor/internal/models"

	"go.uber.org/zap"
)

// 时间戳合法区间与"秒级时间戳"判定区间
const (
	minValidMillis = 946684800000 // 2000-01-01T00:00:00Z
	maxFutureDrift = 24 * time.Hour

	// 数值落在该区间时视为秒级 Unix 时间戳（约 2001 年至 2033 年）
	secondsLow  = 978307200
	secondsHigh = 2000000000
)

// 各指标的字段别名表（按优先级排列，取第一个存在且非空的值）
var fieldAliases = map[models.Metric][]string{
	models.MetricHeartRate:              {"heartRate", "HeartRate", "hr", "heart_rate", "pulse", "bpm", "heart"},
	models.MetricSpO2:                   {"spo2", "SpO2", "SPO2", "spO2", "oxygen", "oxygenLevel", "oxygen_level", "o2"},
	models.MetricBodyTemp:               {"bodyTemp", "body_temp", "temperature", "bodyTemperature", "objectTemp", "temp"},
	models.MetricAmbientTemp:            {"ambientTemp", "ambient_temp", "roomTemp", "ambientTemperature", "ambient"},
	models.MetricAccMagnitude:           {"accMagnitude", "acc_magnitude", "acceleration", "accel", "acc"},
	models.MetricBloodSugar:             {"bloodSugar", "blood_sugar", "glucose", "bloodGlucose", "sugar"},
	models.MetricBloodPressureSystolic:  {"bloodPressureSystolic", "systolic", "bpSystolic", "sys", "bp_sys"},
	models.MetricBloodPressureDiastolic: {"bloodPressureDiastolic", "diastolic", "bpDiastolic", "dia", "bp_dia"},
}

var timestampAliases = []string{"timestamp", "ts", "time", "recordedAt", "recorded_at", "createdAt", "created_at"}

var fallAliases = []string{"fallDetected", "fall_detected", "fall", "fallStatus"}

var compositeBPAliases = []string{"bp", "bloodPressure", "blood_pressure", "BP"}

// Normalizer 读数标准化器：把异构原始记录转换为 CanonicalReading
type Normalizer struct {
	logger *zap.Logger
}

// New 创建标准化器
func New(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize 标准化单条原始记录
// 任何畸形输入都降级为缺失字段，不返回错误
func (n *Normalizer) Normalize(raw models.RawRecord) models.CanonicalReading {
	reading := models.CanonicalReading{
		Timestamp: n.resolveTimestamp(raw),
	}

	for metric, aliases := range fieldAliases {
		if v, ok := resolveNumber(raw, aliases); ok {
			reading.SetValue(metric, v)
		}
	}

	// 体温单位归一：华氏数值范围 (45, 120) → 摄氏，保留一位小数
	if reading.BodyTemp != nil {
		t := *reading.BodyTemp
		if t > 45 && t < 120 {
			c := math.Round((t-32)*5/9*10) / 10
			reading.BodyTemp = &c
		}
	}

	// 复合血压字段："<systolic>/<diastolic>"
	if reading.BloodPressureSystolic == nil && reading.BloodPressureDiastolic == nil {
		if sys, dia, ok := resolveCompositeBP(raw); ok {
			reading.BloodPressureSystolic = &sys
			reading.BloodPressureDiastolic = &dia
		}
	}

	reading.FallDetected = resolveFall(raw)

	return reading
}

// resolveTimestamp 解析时间戳；非法值替换为当前时间
func (n *Normalizer) resolveTimestamp(raw models.RawRecord) int64 {
	nowMs := time.Now().UnixMilli()
	maxValidMillis := nowMs + maxFutureDrift.Milliseconds()

	v, ok := resolveNumber(raw, timestampAliases)
	if !ok || v == 0 {
		return nowMs
	}

	ms := v
	// 秒级时间戳换算为毫秒
	if ms >= secondsLow && ms <= secondsHigh {
		ms *= 1000
	}

	if ms < minValidMillis || ms > float64(maxValidMillis) {
		n.logger.Debug("Implausible timestamp replaced with current time",
			zap.Float64("raw_value", v),
		)
		return nowMs
	}

	return int64(ms)
}

// resolveNumber 按别名表探测第一个存在且可转数值的字段
func resolveNumber(raw models.RawRecord, aliases []string) (float64, bool) {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if f, ok := coerceFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// coerceFloat 数值强制转换；非有限值视为缺失
func coerceFloat(v interface{}) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// resolveCompositeBP 解析 "120/80" 形式的复合血压字段
func resolveCompositeBP(raw models.RawRecord) (sys, dia float64, ok bool) {
	for _, key := range compositeBPAliases {
		v, present := raw[key]
		if !present {
			continue
		}
		s, isStr := v.(string)
		if !isStr {
			continue
		}
		parts := strings.Split(strings.TrimSpace(s), "/")
		if len(parts) != 2 {
			continue
		}
		sysV, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		diaV, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if math.IsNaN(sysV) || math.IsInf(sysV, 0) || math.IsNaN(diaV) || math.IsInf(diaV, 0) {
			continue
		}
		return sysV, diaV, true
	}
	return 0, 0, false
}

// resolveFall 解析跌倒标志（bool、字符串、数值均可）
func resolveFall(raw models.RawRecord) bool {
	for _, key := range fallAliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case bool:
			return val
		case string:
			s := strings.ToLower(strings.TrimSpace(val))
			return s == "true" || s == "1" || s == "fall" || s == "yes"
		default:
			if f, ok := coerceFloat(v); ok {
				return f != 0
			}
		}
	}
	return false
}
