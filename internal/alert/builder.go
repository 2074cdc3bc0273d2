package alert

import (
	"time"

	"vitals-monitor/internal/models"

	"github.com/google/uuid"
)

// EventBuilder 报警事件构建器（统一生成 event_id 与 patient_id）
type EventBuilder struct {
	patientID string
}

// NewEventBuilder 创建报警事件构建器
func NewEventBuilder(patientID string) *EventBuilder {
	return &EventBuilder{patientID: patientID}
}

// Build 构建报警事件
func (b *EventBuilder) Build(parameter models.Metric, value *float64, band models.ThresholdBand, timestamp int64) models.AlertEvent {
	return models.AlertEvent{
		EventID:     uuid.New().String(),
		PatientID:   b.patientID,
		Parameter:   parameter,
		Value:       value,
		Threshold:   band,
		Timestamp:   timestamp,
		AlertStatus: models.AlertStatusActive,
		CreatedAt:   time.Now(),
	}
}
