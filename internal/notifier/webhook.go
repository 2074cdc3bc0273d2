package notifier

import (
	"context"
	"time"

	"vitals-monitor/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier 通过 HTTP webhook 把报警批次交给外部通知服务（短信/邮件）
type WebhookNotifier struct {
	url    string
	client *resty.Client
	logger *zap.Logger
}

// NewWebhookNotifier 创建 webhook 分发器
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second)

	return &WebhookNotifier{
		url:    url,
		client: client,
		logger: logger,
	}
}

// webhookPayload webhook 请求体
type webhookPayload struct {
	PatientID string              `json:"patient_id"`
	Events    []models.AlertEvent `json:"events"`
}

// Dispatch 发送一个报警批次（每批恰好一次请求）
// 失败只记录日志；重试策略属于外部通知服务，不在本核心内
func (n *WebhookNotifier) Dispatch(ctx context.Context, events []models.AlertEvent) {
	if len(events) == 0 {
		return
	}

	payload := webhookPayload{
		PatientID: events[0].PatientID,
		Events:    events,
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.url)

	if err != nil {
		n.logger.Error("Failed to dispatch alerts via webhook",
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
		return
	}
	if resp.IsError() {
		n.logger.Error("Webhook returned error status",
			zap.Int("status", resp.StatusCode()),
			zap.Int("event_count", len(events)),
		)
		return
	}

	n.logger.Info("Dispatched alert batch via webhook",
		zap.Int("event_count", len(events)),
	)
}
