package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vitals-monitor/internal/config"

	"go.uber.org/zap"
)

// AlertState 报警冷却状态（持久化后重启不会引发通知风暴）
type AlertState struct {
	LastAlertAt int64 `json:"last_alert_at"` // 毫秒时间戳，0 表示从未触发
}

// StateStore 报警状态存储
type StateStore struct {
	config *config.Config
	kv     KVStore
	logger *zap.Logger
}

// NewStateStore 创建状态存储
func NewStateStore(cfg *config.Config, kv KVStore, logger *zap.Logger) *StateStore {
	return &StateStore{
		config: cfg,
		kv:     kv,
		logger: logger,
	}
}

// stateKey 构建状态键
func (s *StateStore) stateKey(patientID string) string {
	return fmt.Sprintf("%s%s:cooldown", s.config.Cache.StateKeyPrefix, patientID)
}

// GetLastAlertAt 读取上次报警时间；状态不存在时返回零值（Idle）
func (s *StateStore) GetLastAlertAt(ctx context.Context, patientID string) (time.Time, error) {
	val, err := s.kv.Get(ctx, s.stateKey(patientID))
	if err != nil {
		if err == ErrCacheMiss {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get alert state: %w", err)
	}

	var state AlertState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return time.Time{}, fmt.Errorf("failed to unmarshal alert state: %w", err)
	}

	if state.LastAlertAt == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(state.LastAlertAt), nil
}

// SetLastAlertAt 写入上次报警时间
// TTL 取冷却时间的两倍：冷却早已过期的状态没有保留价值
func (s *StateStore) SetLastAlertAt(ctx context.Context, patientID string, at time.Time, cooldown time.Duration) error {
	state := AlertState{LastAlertAt: at.UnixMilli()}

	jsonData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal alert state: %w", err)
	}

	if err := s.kv.Set(ctx, s.stateKey(patientID), string(jsonData), 2*cooldown); err != nil {
		return fmt.Errorf("failed to set alert state: %w", err)
	}

	return nil
}
