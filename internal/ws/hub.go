package ws

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Hub 维护活跃的 WebSocket 客户端并向它们广播消息
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run 事件循环（在独立 goroutine 中运行）
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("WebSocket client registered",
				zap.Int("client_count", len(h.clients)),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("WebSocket client unregistered",
					zap.Int("client_count", len(h.clients)),
				)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 发送缓冲已满，视为客户端失联，移除
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// envelope 广播消息包装：{type, payload}
type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// BroadcastReading 向所有客户端推送一条读数
func (h *Hub) BroadcastReading(reading interface{}) {
	h.broadcastJSON("reading", reading)
}

// BroadcastAlerts 向所有客户端推送报警批次
func (h *Hub) BroadcastAlerts(alerts interface{}) {
	h.broadcastJSON("alert", alerts)
}

func (h *Hub) broadcastJSON(msgType string, payload interface{}) {
	data, err := json.Marshal(envelope{Type: msgType, Payload: payload})
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message",
			zap.String("type", msgType),
			zap.Error(err),
		)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		// 广播通道已满，丢弃这条消息（实时推送，旧消息无保留价值）
		h.logger.Warn("Broadcast channel full, dropping message",
			zap.String("type", msgType),
		)
	}
}
