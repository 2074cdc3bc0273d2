package cache_test

import (
	"context"
	"testing"
	"time"

	"vitals-monitor/internal/cache"
	"vitals-monitor/internal/config"
	"vitals-monitor/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.LatestKeyPrefix = "vitals:patient:"
	cfg.Cache.LatestSuffix = ":latest"
	cfg.Cache.AlertKeyPrefix = "vitals:patient:"
	cfg.Cache.AlertSuffix = ":alerts"
	cfg.Cache.LatestTTL = 30 * time.Second
	cfg.Cache.AlertTTL = 30 * time.Second
	cfg.Cache.StateKeyPrefix = "alert:state:"
	return cfg
}

func TestCacheManager_LatestReadingRoundTrip(t *testing.T) {
	kv := newFakeKVStore()
	cm := cache.NewCacheManager(testConfig(), kv, zap.NewNop())
	ctx := context.Background()

	hr := 72.0
	reading := &models.CanonicalReading{
		Timestamp: 1700000000000,
		HeartRate: &hr,
	}

	require.NoError(t, cm.UpdateLatestReading(ctx, "patient-1", reading))

	got, err := cm.GetLatestReading(ctx, "patient-1")
	require.NoError(t, err)
	require.Equal(t, int64(1700000000000), got.Timestamp)
	require.Equal(t, 72.0, *got.HeartRate)
	require.Nil(t, got.SpO2)
}

func TestCacheManager_LatestReadingMiss(t *testing.T) {
	kv := newFakeKVStore()
	cm := cache.NewCacheManager(testConfig(), kv, zap.NewNop())

	_, err := cm.GetLatestReading(context.Background(), "nobody")
	require.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestCacheManager_ActiveAlertsRoundTrip(t *testing.T) {
	kv := newFakeKVStore()
	cm := cache.NewCacheManager(testConfig(), kv, zap.NewNop())
	ctx := context.Background()

	v := 130.0
	alerts := []models.AlertEvent{
		{
			EventID:     "evt-1",
			PatientID:   "patient-1",
			Parameter:   models.MetricHeartRate,
			Value:       &v,
			Threshold:   models.ThresholdBand{Min: 60, Max: 100, Unit: "bpm"},
			Timestamp:   1700000000000,
			AlertStatus: models.AlertStatusActive,
		},
	}

	require.NoError(t, cm.UpdateActiveAlerts(ctx, "patient-1", alerts))

	got, err := cm.GetActiveAlerts(ctx, "patient-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "evt-1", got[0].EventID)
	require.Equal(t, models.MetricHeartRate, got[0].Parameter)
}

func TestStateStore_CooldownRoundTrip(t *testing.T) {
	kv := newFakeKVStore()
	ss := cache.NewStateStore(testConfig(), kv, zap.NewNop())
	ctx := context.Background()

	// 状态不存在时返回零值（Idle）
	last, err := ss.GetLastAlertAt(ctx, "patient-1")
	require.NoError(t, err)
	require.True(t, last.IsZero())

	now := time.Now().Truncate(time.Millisecond)
	require.NoError(t, ss.SetLastAlertAt(ctx, "patient-1", now, 5*time.Minute))

	got, err := ss.GetLastAlertAt(ctx, "patient-1")
	require.NoError(t, err)
	require.Equal(t, now.UnixMilli(), got.UnixMilli())
}
