package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"vitals-monitor/internal/config"
	"vitals-monitor/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTSource 推送式数据源：订阅 MQTT 主题，消息到达即交付
type MQTTSource struct {
	config *config.MQTTConfig
	mu     sync.Mutex // 保护 client：控制器停源与 ctx 监听 goroutine 可能并发调用 Stop
	client mqtt.Client
	logger *zap.Logger
}

// NewMQTTSource 创建 MQTT 数据源（不连接，连接在 Start 时建立）
func NewMQTTSource(cfg *config.MQTTConfig, logger *zap.Logger) *MQTTSource {
	return &MQTTSource{
		config: cfg,
		logger: logger,
	}
}

// Name 数据源名称
func (s *MQTTSource) Name() string {
	return "mqtt"
}

// Start 连接 broker 并订阅主题
func (s *MQTTSource) Start(ctx context.Context, handler BatchHandler) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.config.Broker)
	opts.SetClientID(s.config.ClientID)

	if s.config.Username != "" {
		opts.SetUsername(s.config.Username)
	}
	if s.config.Password != "" {
		opts.SetPassword(s.config.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	if token := client.Subscribe(s.config.Topic, s.config.QoS, func(client mqtt.Client, msg mqtt.Message) {
		batch, err := decodeBatch(msg.Payload())
		if err != nil {
			// 记录错误，但不中断订阅
			s.logger.Warn("Failed to decode MQTT payload",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
			return
		}
		handler(batch)
	}); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		s.mu.Lock()
		s.client = nil
		s.mu.Unlock()
		return fmt.Errorf("failed to subscribe to topic %s: %w", s.config.Topic, token.Error())
	}

	s.logger.Info("MQTT source started",
		zap.String("broker", s.config.Broker),
		zap.String("topic", s.config.Topic),
	)

	// ctx 取消时停止订阅
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop 取消订阅并断开连接（幂等、并发安全）
func (s *MQTTSource) Stop() {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()

	if client == nil {
		return
	}
	if token := client.Unsubscribe(s.config.Topic); token.Wait() && token.Error() != nil {
		s.logger.Warn("Failed to unsubscribe", zap.Error(token.Error()))
	}
	client.Disconnect(250) // 250ms等待时间
	s.logger.Info("MQTT source stopped")
}

// decodeBatch 解析消息载荷：单个对象或对象数组均可
func decodeBatch(payload []byte) ([]models.RawRecord, error) {
	var batch []models.RawRecord
	if err := json.Unmarshal(payload, &batch); err == nil {
		return batch, nil
	}

	var single models.RawRecord
	if err := json.Unmarshal(payload, &single); err != nil {
		return nil, fmt.Errorf("payload is neither a record nor a record array: %w", err)
	}
	return []models.RawRecord{single}, nil
}
