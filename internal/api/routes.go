// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h *Handler, ws *WSHandler) {
	e.GET("/api/health", h.HandleHealth)
	e.GET("/api/lines", h.HandleListLines)

	syncGroup := e.Group("/api/sync")
	syncGroup.GET("/status", h.HandleSyncStatusAll)
	syncGroup.GET("/status/:lineId", h.HandleSyncStatus)

	lineGroup := e.Group("/api/lines/:lineId")
	lineGroup.GET("/test", h.HandleTestConnection)
	lineGroup.GET("/production", h.HandleProduction)
	lineGroup.GET("/graph", h.HandleGraph)
	lineGroup.GET("/readings", h.HandleReadings)
	lineGroup.GET("/alerts", h.HandleAlerts)

	e.GET("/api/ws", ws.HandleWebSocket)
}
