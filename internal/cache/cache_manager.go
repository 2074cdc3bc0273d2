package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"vitals-monitor/internal/config"
	"vitals-monitor/internal/models"

	"go.uber.org/zap"
)

// CacheManager Redis 缓存管理器（实时读数与活跃报警，供 UI 层读取）
type CacheManager struct {
	config *config.Config
	kv     KVStore
	logger *zap.Logger
}

// NewCacheManager 创建缓存管理器
func NewCacheManager(cfg *config.Config, kv KVStore, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		config: cfg,
		kv:     kv,
		logger: logger,
	}
}

// latestKey 实时读数缓存键
func (c *CacheManager) latestKey(patientID string) string {
	return fmt.Sprintf("%s%s%s", c.config.Cache.LatestKeyPrefix, patientID, c.config.Cache.LatestSuffix)
}

// alertKey 活跃报警缓存键
func (c *CacheManager) alertKey(patientID string) string {
	return fmt.Sprintf("%s%s%s", c.config.Cache.AlertKeyPrefix, patientID, c.config.Cache.AlertSuffix)
}

// UpdateLatestReading 更新最新读数缓存
func (c *CacheManager) UpdateLatestReading(ctx context.Context, patientID string, reading *models.CanonicalReading) error {
	key := c.latestKey(patientID)

	jsonData, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	if err := c.kv.Set(ctx, key, string(jsonData), c.config.Cache.LatestTTL); err != nil {
		return fmt.Errorf("failed to set latest reading cache: %w", err)
	}

	c.logger.Debug("Updated latest reading cache",
		zap.String("patient_id", patientID),
		zap.String("key", key),
	)

	return nil
}

// GetLatestReading 读取最新读数缓存
func (c *CacheManager) GetLatestReading(ctx context.Context, patientID string) (*models.CanonicalReading, error) {
	key := c.latestKey(patientID)

	val, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var reading models.CanonicalReading
	if err := json.Unmarshal([]byte(val), &reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reading: %w", err)
	}

	return &reading, nil
}

// UpdateActiveAlerts 更新活跃报警缓存
func (c *CacheManager) UpdateActiveAlerts(ctx context.Context, patientID string, alerts []models.AlertEvent) error {
	key := c.alertKey(patientID)

	jsonData, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	if err := c.kv.Set(ctx, key, string(jsonData), c.config.Cache.AlertTTL); err != nil {
		return fmt.Errorf("failed to set alert cache: %w", err)
	}

	c.logger.Debug("Updated active alert cache",
		zap.String("patient_id", patientID),
		zap.Int("alert_count", len(alerts)),
	)

	return nil
}

// GetActiveAlerts 读取活跃报警缓存
func (c *CacheManager) GetActiveAlerts(ctx context.Context, patientID string) ([]models.AlertEvent, error) {
	key := c.alertKey(patientID)

	val, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var alerts []models.AlertEvent
	if err := json.Unmarshal([]byte(val), &alerts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alerts: %w", err)
	}

	return alerts, nil
}
