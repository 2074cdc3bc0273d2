package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vitals-monitor/internal/models"
	"vitals-monitor/internal/normalizer"
	"vitals-monitor/internal/smoothing"
	"vitals-monitor/internal/source"

	"go.uber.org/zap"
)

// smoothContext 平滑滤波需要的历史上下文条数（窗口为 3：新读数 + 前 2 条）
const smoothContext = 2

// ReadingHook 新读数落入缓冲区后的回调（缓存更新、报警评估、UI 推送）
type ReadingHook func(reading models.CanonicalReading)

// Controller 数据流控制器
// 缓冲区的唯一写入者；同一时刻只有一个活跃数据源
type Controller struct {
	mu            sync.Mutex
	buffer        *Buffer
	normalizer    *normalizer.Normalizer
	staleAfter    time.Duration
	lastSuccessAt time.Time

	active source.Source
	cancel context.CancelFunc

	hook   ReadingHook
	logger *zap.Logger
}

// NewController 创建控制器
func NewController(capacity int, staleAfter time.Duration, norm *normalizer.Normalizer, logger *zap.Logger) *Controller {
	return &Controller{
		buffer:     NewBuffer(capacity),
		normalizer: norm,
		staleAfter: staleAfter,
		logger:     logger,
	}
}

// SetReadingHook 设置新读数回调（须在 Start 前调用）
func (c *Controller) SetReadingHook(hook ReadingHook) {
	c.hook = hook
}

// Start 启动指定数据源
// 已有活跃数据源时先停掉旧的，避免出现两个并发写入者
func (c *Controller) Start(ctx context.Context, src source.Source) error {
	c.mu.Lock()
	if c.active != nil {
		c.stopActiveLocked()
	}

	srcCtx, cancel := context.WithCancel(ctx)
	c.active = src
	c.cancel = cancel
	c.lastSuccessAt = time.Now()
	c.mu.Unlock()

	if err := src.Start(srcCtx, c.handleBatch); err != nil {
		c.mu.Lock()
		c.active = nil
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("failed to start source %s: %w", src.Name(), err)
	}

	c.logger.Info("Stream controller started",
		zap.String("source", src.Name()),
	)

	return nil
}

// Stop 停止当前数据源
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopActiveLocked()
}

// stopActiveLocked 停止活跃数据源（持锁调用）
func (c *Controller) stopActiveLocked() {
	if c.active == nil {
		return
	}
	c.logger.Info("Stopping active source",
		zap.String("source", c.active.Name()),
	)
	c.cancel()
	c.active.Stop()
	c.active = nil
	c.cancel = nil
}

// handleBatch 处理一批原始记录：标准化 → 平滑 → 入缓冲区 → 回调
func (c *Controller) handleBatch(batch []models.RawRecord) {
	if len(batch) == 0 {
		return
	}

	accepted := make([]models.CanonicalReading, 0, len(batch))

	c.mu.Lock()
	for _, raw := range batch {
		reading := c.normalizer.Normalize(raw)

		// 以缓冲区最近 2 条为上下文做平滑，取窗口内最新一条入区
		window := append(c.buffer.Tail(smoothContext), reading)
		smoothed := smoothing.Smooth(window)
		final := smoothed[len(smoothed)-1]

		c.buffer.Append(final)
		accepted = append(accepted, final)
	}
	c.lastSuccessAt = time.Now()
	c.mu.Unlock()

	c.logger.Debug("Batch processed",
		zap.Int("count", len(accepted)),
	)

	// 回调在锁外执行，避免 hook 反过来读快照时死锁
	if c.hook != nil {
		for _, reading := range accepted {
			c.hook(reading)
		}
	}
}

// Snapshot 缓冲区全量副本（旧→新）
func (c *Controller) Snapshot() []models.CanonicalReading {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.Snapshot()
}

// Latest 最新读数
func (c *Controller) Latest() (models.CanonicalReading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.Latest()
}

// Stale 距上次成功更新是否已超过 staleAfter
// 数据源故障期间缓冲区保持原样（旧而有效），UI 凭此标志降级展示
func (c *Controller) Stale(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSuccessAt) > c.staleAfter
}

// LastSuccessAt 最近一次成功更新时间
func (c *Controller) LastSuccessAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSuccessAt
}
