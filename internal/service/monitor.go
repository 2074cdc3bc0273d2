package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"vitals-monitor/internal/alert"
	"vitals-monitor/internal/api"
	"vitals-monitor/internal/cache"
	"vitals-monitor/internal/config"
	"vitals-monitor/internal/models"
	"vitals-monitor/internal/normalizer"
	"vitals-monitor/internal/notifier"
	"vitals-monitor/internal/repository"
	"vitals-monitor/internal/source"
	"vitals-monitor/internal/stream"
	"vitals-monitor/internal/threshold"
	"vitals-monitor/internal/ws"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MonitorService 监控服务（整合各层）
type MonitorService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
	patientID   string

	// 各层组件
	bands        map[models.Metric]models.ThresholdBand
	controller   *stream.Controller
	aggregator   *alert.Aggregator
	cacheManager *cache.CacheManager
	stateStore   *cache.StateStore
	alertRepo    *repository.AlertEventsRepository
	notifier     notifier.Notifier
	hub          *ws.Hub
	httpServer   *http.Server
}

// NewMonitorService 创建监控服务
func NewMonitorService(cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	patientID := cfg.Monitor.PatientID
	if patientID == "" {
		return nil, fmt.Errorf("PATIENT_ID is required")
	}

	// 1. 连接数据库
	db, err := repository.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 2. 连接 Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. 阈值配置（启动时加载，运行期只读）
	bands := threshold.BandsForAgeGroup(cfg.Monitor.AgeGroup)

	// 4. 创建缓存与仓库层
	kv := cache.NewRedisKVStore(redisClient)
	cacheManager := cache.NewCacheManager(cfg, kv, logger)
	stateStore := cache.NewStateStore(cfg, kv, logger)
	alertRepo := repository.NewAlertEventsRepository(db, logger)

	// 5. 创建核心管道
	norm := normalizer.New(logger)
	controller := stream.NewController(cfg.Monitor.BufferCapacity, cfg.Monitor.StaleAfter, norm, logger)
	aggregator := alert.NewAggregator(alert.NewEventBuilder(patientID))

	// 6. 报警分发通道
	var notifiers []notifier.Notifier
	if cfg.Notify.AlertStream != "" {
		notifiers = append(notifiers, notifier.NewStreamNotifier(redisClient, cfg.Notify.AlertStream, logger))
	}
	if cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notifier.NewWebhookNotifier(cfg.Notify.WebhookURL, logger))
	}

	// 7. WebSocket Hub
	hub := ws.NewHub(logger)

	s := &MonitorService{
		config:       cfg,
		db:           db,
		redisClient:  redisClient,
		logger:       logger,
		patientID:    patientID,
		bands:        bands,
		controller:   controller,
		aggregator:   aggregator,
		cacheManager: cacheManager,
		stateStore:   stateStore,
		alertRepo:    alertRepo,
		notifier:     notifier.NewComposite(notifiers...),
		hub:          hub,
	}

	controller.SetReadingHook(s.onReading)

	// 8. HTTP API
	handler := api.NewHandler(patientID, controller, bands, alertRepo, cacheManager, hub, logger)
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: api.NewRouter(handler),
	}

	return s, nil
}

// Start 启动服务（阻塞直到 ctx 取消或出错）
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("Starting monitor service",
		zap.String("patient_id", s.patientID),
		zap.String("age_group", s.config.Monitor.AgeGroup),
		zap.String("source_mode", s.config.Monitor.SourceMode),
	)

	go s.hub.Run()

	// 启动数据源：订阅优先，失败时回退轮询（启动时一次性决策，不做运行期竞争）
	if err := s.startSource(ctx); err != nil {
		return err
	}

	// 启动 HTTP API
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening",
			zap.Int("port", s.config.HTTP.Port),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		return fmt.Errorf("http server error: %w", err)
	}
}

// startSource 选定并启动唯一活跃数据源
func (s *MonitorService) startSource(ctx context.Context) error {
	switch s.config.Monitor.SourceMode {
	case "poll":
		return s.controller.Start(ctx, source.NewPollSource(&s.config.Poll, s.logger))
	default:
		mqttSrc := source.NewMQTTSource(&s.config.MQTT, s.logger)
		err := s.controller.Start(ctx, mqttSrc)
		if err == nil {
			return nil
		}
		if s.config.Poll.URL == "" {
			return err
		}
		// broker 不可达且配置了轮询端点 → 回退轮询
		s.logger.Warn("MQTT source failed, falling back to polling",
			zap.Error(err),
		)
		return s.controller.Start(ctx, source.NewPollSource(&s.config.Poll, s.logger))
	}
}

// onReading 每条新读数的处理钩子
func (s *MonitorService) onReading(reading models.CanonicalReading) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. 更新实时缓存（失败不影响管道）
	if err := s.cacheManager.UpdateLatestReading(ctx, s.patientID, &reading); err != nil {
		s.logger.Warn("Failed to update latest reading cache", zap.Error(err))
	}

	// 2. 推送给仪表盘
	s.hub.BroadcastReading(reading)

	// 3. 报警评估
	s.checkAlerts(ctx, &reading)
}

// checkAlerts 对最新读数做紧急状况评估与分发
func (s *MonitorService) checkAlerts(ctx context.Context, reading *models.CanonicalReading) {
	now := time.Now()

	lastAlertAt, err := s.stateStore.GetLastAlertAt(ctx, s.patientID)
	if err != nil {
		// Redis 状态不可用时从持久化事件恢复冷却基准
		s.logger.Warn("Failed to read alert cooldown state, falling back to database", zap.Error(err))
		lastAlertAt = s.lastAlertAtFromDB(ctx)
	}

	events := s.aggregator.CheckEmergency(reading, s.bands, lastAlertAt, s.config.Monitor.AlertCooldown, now)
	if len(events) == 0 {
		return
	}

	// 仅在产生了事件批次时推进 lastAlertAt（Idle → Cooldown）
	if err := s.stateStore.SetLastAlertAt(ctx, s.patientID, now, s.config.Monitor.AlertCooldown); err != nil {
		s.logger.Warn("Failed to persist alert cooldown state", zap.Error(err))
	}

	// 持久化（失败记录日志，继续处理其余环节）
	for i := range events {
		if err := s.alertRepo.CreateAlertEvent(ctx, &events[i]); err != nil {
			s.logger.Error("Failed to persist alert event",
				zap.String("event_id", events[i].EventID),
				zap.String("parameter", string(events[i].Parameter)),
				zap.Error(err),
			)
		}
	}

	// 缓存活跃报警供 UI 读取
	if err := s.cacheManager.UpdateActiveAlerts(ctx, s.patientID, events); err != nil {
		s.logger.Warn("Failed to update active alert cache", zap.Error(err))
	}

	// 分发（fire-and-forget，每批恰好一次）
	s.notifier.Dispatch(ctx, events)
	s.hub.BroadcastAlerts(events)

	s.logger.Info("Alert batch raised",
		zap.Int("event_count", len(events)),
		zap.Int64("reading_timestamp", reading.Timestamp),
	)
}

// lastAlertAtFromDB 以冷却窗口内最近一条持久化事件的 created_at 为上次报警时间
// 数据库也不可用时按 Idle 处理：宁可多报不可漏报
func (s *MonitorService) lastAlertAtFromDB(ctx context.Context) time.Time {
	recent, err := s.alertRepo.GetRecentAlertEvent(ctx, s.patientID, s.config.Monitor.AlertCooldown)
	if err != nil {
		s.logger.Warn("Failed to read recent alert event", zap.Error(err))
		return time.Time{}
	}
	if recent == nil {
		return time.Time{}
	}
	return recent.CreatedAt
}

// Stop 停止服务
func (s *MonitorService) Stop() error {
	s.logger.Info("Stopping monitor service")

	s.controller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Failed to shutdown http server", zap.Error(err))
	}

	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis client", zap.Error(err))
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.Error(err))
		return err
	}

	return nil
}
