package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vitals-monitor/internal/models"

	"go.uber.org/zap"
)

// AlertEventsRepository 报警事件仓库（alert_events 表）
type AlertEventsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertEventsRepository 创建报警事件仓库
func NewAlertEventsRepository(db *sql.DB, logger *zap.Logger) *AlertEventsRepository {
	return &AlertEventsRepository{
		db:     db,
		logger: logger,
	}
}

// CreateAlertEvent 写入报警事件
func (r *AlertEventsRepository) CreateAlertEvent(ctx context.Context, event *models.AlertEvent) error {
	if event.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}

	query := `
		INSERT INTO alert_events (
			event_id,
			patient_id,
			parameter,
			value,
			threshold_min,
			threshold_max,
			threshold_unit,
			reading_timestamp,
			alert_status,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var value sql.NullFloat64
	if event.Value != nil {
		value = sql.NullFloat64{Float64: *event.Value, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		event.EventID,
		event.PatientID,
		string(event.Parameter),
		value,
		event.Threshold.Min,
		event.Threshold.Max,
		event.Threshold.Unit,
		event.Timestamp,
		event.AlertStatus,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert event: %w", err)
	}

	return nil
}

// GetRecentAlertEvent 查询最近 within 时间内的最新报警
// Redis 冷却状态不可用时以持久化事件为兜底，避免重复通知风暴
func (r *AlertEventsRepository) GetRecentAlertEvent(ctx context.Context, patientID string, within time.Duration) (*models.AlertEvent, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	query := `
		SELECT
			event_id,
			patient_id,
			parameter,
			value,
			threshold_min,
			threshold_max,
			threshold_unit,
			reading_timestamp,
			alert_status,
			created_at
		FROM alert_events
		WHERE patient_id = $1
		  AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	since := time.Now().Add(-within)

	event, err := r.scanEvent(r.db.QueryRowContext(ctx, query, patientID, since))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query recent alert event: %w", err)
	}

	return event, nil
}

// ListAlertEvents 按时间倒序列出报警事件
func (r *AlertEventsRepository) ListAlertEvents(ctx context.Context, patientID string, limit int) ([]models.AlertEvent, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			event_id,
			patient_id,
			parameter,
			value,
			threshold_min,
			threshold_max,
			threshold_unit,
			reading_timestamp,
			alert_status,
			created_at
		FROM alert_events
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert events: %w", err)
	}
	defer rows.Close()

	var events []models.AlertEvent
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert events: %w", err)
	}

	return events, nil
}

// AcknowledgeAlertEvent 确认报警事件
func (r *AlertEventsRepository) AcknowledgeAlertEvent(ctx context.Context, patientID, eventID string) error {
	query := `
		UPDATE alert_events
		SET alert_status = $1
		WHERE event_id = $2
		  AND patient_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, models.AlertStatusAcknowledged, eventID, patientID)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert event not found: %s", eventID)
	}

	return nil
}

// scanner 兼容 *sql.Row 与 *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent 扫描单条报警事件
func (r *AlertEventsRepository) scanEvent(row scanner) (*models.AlertEvent, error) {
	var event models.AlertEvent
	var parameter string
	var value sql.NullFloat64

	err := row.Scan(
		&event.EventID,
		&event.PatientID,
		&parameter,
		&value,
		&event.Threshold.Min,
		&event.Threshold.Max,
		&event.Threshold.Unit,
		&event.Timestamp,
		&event.AlertStatus,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Parameter = models.Metric(parameter)
	if value.Valid {
		v := value.Float64
		event.Value = &v
	}

	return &event, nil
}
