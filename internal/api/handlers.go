package api

import (
	"net/http"
	"strconv"
	"time"

	"vitals-monitor/internal/cache"
	"vitals-monitor/internal/models"
	"vitals-monitor/internal/repository"
	"vitals-monitor/internal/stream"
	"vitals-monitor/internal/threshold"
	"vitals-monitor/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxAlertsPageSize 报警列表单页上限
const maxAlertsPageSize = 500

// Handler UI 层读取接口
type Handler struct {
	patientID    string
	controller   *stream.Controller
	bands        map[models.Metric]models.ThresholdBand
	alertRepo    *repository.AlertEventsRepository
	cacheManager *cache.CacheManager
	hub          *ws.Hub
	logger       *zap.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(
	patientID string,
	controller *stream.Controller,
	bands map[models.Metric]models.ThresholdBand,
	alertRepo *repository.AlertEventsRepository,
	cacheManager *cache.CacheManager,
	hub *ws.Hub,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		patientID:    patientID,
		controller:   controller,
		bands:        bands,
		alertRepo:    alertRepo,
		cacheManager: cacheManager,
		hub:          hub,
		logger:       logger,
	}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetReadings 读数快照（旧→新）+ stale 标志
func (h *Handler) GetReadings(c *gin.Context) {
	readings := h.controller.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"patient_id": h.patientID,
		"items":      readings,
		"count":      len(readings),
		"stale":      h.controller.Stale(time.Now()),
	})
}

// GetLatestReading 最新读数 + 每个展示指标的状态分级
// 缓冲区为空（如刚重启）时回退到 Redis 缓存的最新读数，标记 stale
func (h *Handler) GetLatestReading(c *gin.Context) {
	reading, ok := h.controller.Latest()
	if !ok {
		cached, err := h.cacheManager.GetLatestReading(c.Request.Context(), h.patientID)
		if err != nil {
			if err != cache.ErrCacheMiss {
				h.logger.Warn("Failed to read latest reading cache", zap.Error(err))
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "no readings yet"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"patient_id": h.patientID,
			"reading":    cached,
			"status":     threshold.EvaluateReading(cached, h.bands),
			"stale":      true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id": h.patientID,
		"reading":    reading,
		"status":     threshold.EvaluateReading(&reading, h.bands),
		"stale":      h.controller.Stale(time.Now()),
	})
}

// ListAlerts 最近报警事件（时间倒序）
func (h *Handler) ListAlerts(c *gin.Context) {
	limit := 50
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxAlertsPageSize {
		limit = maxAlertsPageSize
	}

	events, err := h.alertRepo.ListAlertEvents(c.Request.Context(), h.patientID, limit)
	if err != nil {
		h.logger.Error("Failed to list alert events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alert events"})
		return
	}
	if events == nil {
		events = []models.AlertEvent{}
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id": h.patientID,
		"items":      events,
		"count":      len(events),
	})
}

// ListActiveAlerts 当前活跃报警批次（报警触发时写入 Redis 缓存）
func (h *Handler) ListActiveAlerts(c *gin.Context) {
	alerts, err := h.cacheManager.GetActiveAlerts(c.Request.Context(), h.patientID)
	if err != nil {
		if err != cache.ErrCacheMiss {
			h.logger.Warn("Failed to read active alert cache", zap.Error(err))
		}
		alerts = []models.AlertEvent{}
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id": h.patientID,
		"items":      alerts,
		"count":      len(alerts),
	})
}

// AcknowledgeAlert 确认报警事件
func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	eventID := c.Param("id")

	if err := h.alertRepo.AcknowledgeAlertEvent(c.Request.Context(), h.patientID, eventID); err != nil {
		h.logger.Warn("Failed to acknowledge alert event",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		c.JSON(http.StatusNotFound, gin.H{"error": "alert event not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"event_id": eventID, "alert_status": models.AlertStatusAcknowledged})
}

// ServeWS WebSocket 升级入口（实时推送读数与报警）
func (h *Handler) ServeWS(c *gin.Context) {
	ws.ServeWS(h.hub, c.Writer, c.Request)
}
