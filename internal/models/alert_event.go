package models

import "time"

// AlertEvent 报警事件（对应 alert_events 表）
type AlertEvent struct {
	EventID     string        `json:"event_id" db:"event_id"`
	PatientID   string        `json:"patient_id" db:"patient_id"`
	Parameter   Metric        `json:"parameter" db:"parameter"`
	Value       *float64      `json:"value,omitempty" db:"value"`
	Threshold   ThresholdBand `json:"threshold" db:"threshold"`
	Timestamp   int64         `json:"timestamp" db:"timestamp"`       // 读数的毫秒时间戳
	AlertStatus string        `json:"alert_status" db:"alert_status"` // active, acknowledged
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// 报警状态
const (
	AlertStatusActive       = "active"
	AlertStatusAcknowledged = "acknowledged"
)
