package api

import "github.com/gin-gonic/gin"

// NewRouter 构建路由
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)
	router.GET("/ws", h.ServeWS)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/readings", h.GetReadings)
		v1.GET("/readings/latest", h.GetLatestReading)
		v1.GET("/alerts", h.ListAlerts)
		v1.GET("/alerts/active", h.ListActiveAlerts)
		v1.POST("/alerts/:id/ack", h.AcknowledgeAlert)
	}

	return router
}
