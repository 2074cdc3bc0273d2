package source

import (
	"context"

	"vitals-monitor/internal/models"
)

// BatchHandler 数据源回调：一次交付一批原始记录
type BatchHandler func(batch []models.RawRecord)

// Source 数据源抽象
// 同一缓冲区同一时刻只允许一个活跃数据源（订阅优先，轮询后备）
// Start 非阻塞；取消 ctx 或调用 Stop 必须先于启动下一个数据源
type Source interface {
	// Start 启动数据源，新数据通过 handler 交付
	Start(ctx context.Context, handler BatchHandler) error
	// Stop 停止数据源（幂等）
	Stop()
	// Name 数据源名称（日志用）
	Name() string
}
