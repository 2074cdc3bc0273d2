package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vitals-monitor/internal/config"
	"vitals-monitor/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// pollResponse 轮询端点返回格式
type pollResponse struct {
	Items []models.RawRecord `json:"items"`
}

// PollSource 轮询式数据源：固定间隔请求 HTTP 端点（订阅不可用时的后备）
type PollSource struct {
	config *config.PollConfig
	client *resty.Client
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewPollSource 创建轮询数据源
func NewPollSource(cfg *config.PollConfig, logger *zap.Logger) *PollSource {
	client := resty.New().
		SetTimeout(10 * time.Second)

	return &PollSource{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// Name 数据源名称
func (s *PollSource) Name() string {
	return "poll"
}

// Start 启动轮询循环（非阻塞）
func (s *PollSource) Start(ctx context.Context, handler BatchHandler) error {
	if s.config.URL == "" {
		return fmt.Errorf("poll URL is not configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.logger.Info("Poll source started",
		zap.String("url", s.config.URL),
		zap.Duration("interval", s.config.Interval),
	)

	go s.run(ctx, handler)

	return nil
}

// Stop 停止轮询（幂等）
func (s *PollSource) Stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.logger.Info("Poll source stopped")
	}
}

// run 轮询循环
func (s *PollSource) run(ctx context.Context, handler BatchHandler) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// 立即执行一次
	s.pollOnce(ctx, handler)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx, handler)
		}
	}
}

// pollOnce 执行一次轮询
// 请求失败只记录日志，不交付任何数据（缓冲区保持原样）
func (s *PollSource) pollOnce(ctx context.Context, handler BatchHandler) {
	var result pollResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(s.config.Limit)).
		SetQueryParam("timeframe", s.config.Timeframe).
		SetResult(&result).
		Get(s.config.URL)

	if err != nil {
		s.logger.Warn("Poll request failed", zap.Error(err))
		return
	}
	if resp.IsError() {
		s.logger.Warn("Poll request returned error status",
			zap.Int("status", resp.StatusCode()),
		)
		return
	}

	if len(result.Items) == 0 {
		return
	}

	handler(result.Items)
}
