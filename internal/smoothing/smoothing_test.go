package smoothing_test

import (
	"math"
	"testing"

	"vitals-monitor/internal/models"
	"vitals-monitor/internal/smoothing"

	"github.com/stretchr/testify/require"
)

func reading(ts int64, hr float64) models.CanonicalReading {
	r := models.CanonicalReading{Timestamp: ts}
	r.SetValue(models.MetricHeartRate, hr)
	return r
}

func TestSmooth_HeartRateSpikeDamped(t *testing.T) {
	// 80 → 130：跳变 50 > 阈值 20，阻尼 0.3
	in := []models.CanonicalReading{
		reading(1000, 80),
		reading(2000, 130),
	}

	out := smoothing.Smooth(in)

	require.Len(t, out, 2)
	// 80 + (130-80)×0.3 = 95
	require.Equal(t, 95.0, *out[1].HeartRate)
	// 前一条不受影响
	require.Equal(t, 80.0, *out[0].HeartRate)
}

func TestSmooth_SmallDeltaUntouched(t *testing.T) {
	in := []models.CanonicalReading{
		reading(1000, 80),
		reading(2000, 95), // 跳变 15 <= 阈值 20
	}

	out := smoothing.Smooth(in)

	require.Equal(t, 95.0, *out[1].HeartRate)
}

func TestSmooth_NeverOvershootsRawDelta(t *testing.T) {
	// |smoothed − prev| <= |raw − prev| 必须对所有输入成立
	prevValues := []float64{40, 60, 80, 100, 180}
	curValues := []float64{20, 55, 79, 130, 250}

	for _, prev := range prevValues {
		for _, cur := range curValues {
			in := []models.CanonicalReading{reading(1, prev), reading(2, cur)}
			out := smoothing.Smooth(in)

			rawDelta := math.Abs(cur - prev)
			smoothedDelta := math.Abs(*out[1].HeartRate - prev)
			require.LessOrEqual(t, smoothedDelta, rawDelta,
				"prev=%v cur=%v", prev, cur)
		}
	}
}

func TestSmooth_AbsentMetricSkipped(t *testing.T) {
	in := []models.CanonicalReading{
		reading(1000, 80),
		{Timestamp: 2000}, // 心率缺失
	}

	out := smoothing.Smooth(in)

	require.Nil(t, out[1].HeartRate)
}

func TestSmooth_SpO2UsesOwnRule(t *testing.T) {
	r1 := models.CanonicalReading{Timestamp: 1000}
	r1.SetValue(models.MetricSpO2, 98)
	r2 := models.CanonicalReading{Timestamp: 2000}
	r2.SetValue(models.MetricSpO2, 88) // 跳变 10 > 阈值 5，阻尼 0.2

	out := smoothing.Smooth([]models.CanonicalReading{r1, r2})

	// 98 + (88-98)×0.2 = 96
	require.Equal(t, 96.0, *out[1].SpO2)
}

func TestSmooth_WindowLimitedToLastThree(t *testing.T) {
	// 窗口外（最旧）的跳变不处理
	in := []models.CanonicalReading{
		reading(1000, 80),
		reading(2000, 150), // 窗口边界外的相邻对 (1,0) 不在处理范围
		reading(3000, 150),
		reading(4000, 150),
	}

	out := smoothing.Smooth(in)

	require.Equal(t, 150.0, *out[1].HeartRate)
}

func TestSmooth_InputNotMutated(t *testing.T) {
	in := []models.CanonicalReading{
		reading(1000, 80),
		reading(2000, 130),
	}

	_ = smoothing.Smooth(in)

	require.Equal(t, 130.0, *in[1].HeartRate)
}

func TestSmooth_ShortInputPassthrough(t *testing.T) {
	require.Empty(t, smoothing.Smooth(nil))

	single := smoothing.Smooth([]models.CanonicalReading{reading(1000, 200)})
	require.Len(t, single, 1)
	require.Equal(t, 200.0, *single[0].HeartRate)
}
