package notifier

import (
	"context"

	"vitals-monitor/internal/models"
)

// Notifier 报警分发抽象
// fire-and-forget 契约：核心不等待投递确认，失败只记录日志，不重试
type Notifier interface {
	Dispatch(ctx context.Context, events []models.AlertEvent)
}

// Composite 组合多个分发通道
type Composite struct {
	notifiers []Notifier
}

// NewComposite 创建组合分发器
func NewComposite(notifiers ...Notifier) *Composite {
	return &Composite{notifiers: notifiers}
}

// Dispatch 依次分发到所有通道
func (c *Composite) Dispatch(ctx context.Context, events []models.AlertEvent) {
	if len(events) == 0 {
		return
	}
	for _, n := range c.notifiers {
		n.Dispatch(ctx, events)
	}
}
