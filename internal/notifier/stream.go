package notifier

import (
	"context"

	"vitals-monitor/internal/models"
	"vitals-monitor/internal/redisx"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StreamNotifier 把报警批次发布到 Redis Stream（触发下游服务）
type StreamNotifier struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewStreamNotifier 创建 Stream 分发器
func NewStreamNotifier(client *redis.Client, stream string, logger *zap.Logger) *StreamNotifier {
	return &StreamNotifier{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Dispatch 发布报警批次
func (n *StreamNotifier) Dispatch(ctx context.Context, events []models.AlertEvent) {
	if len(events) == 0 {
		return
	}

	id, err := redisx.PublishJSONToStream(ctx, n.client, n.stream, events)
	if err != nil {
		n.logger.Error("Failed to publish alerts to stream",
			zap.String("stream", n.stream),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
		return
	}

	n.logger.Info("Published alert batch to stream",
		zap.String("stream", n.stream),
		zap.String("message_id", id),
		zap.Int("event_count", len(events)),
	)
}
