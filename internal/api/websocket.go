// websocket.go - Live data stream endpoint
package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The collector serves trusted shop-floor dashboards only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades clients onto the broadcast hub.
type WSHandler struct {
	hub *hub.Hub
}

// NewWSHandler creates the websocket handler.
func NewWSHandler(h *hub.Hub) *WSHandler {
	return &WSHandler{hub: h}
}

// HandleWebSocket upgrades the connection, registers it with the hub, and
// drains inbound frames until the client goes away. The hub owns the write
// side; this loop exists only to detect disconnects.
func (h *WSHandler) HandleWebSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return NewBadRequestError("websocket upgrade failed", err)
	}

	id := uuid.New().String()
	h.hub.Register(id, hub.NewWSConn(ws))
	fmt.Printf("[WebSocket] client %s connected (%d total)\n", id, h.hub.Count())

	defer func() {
		h.hub.Unregister(id)
		fmt.Printf("[WebSocket] client %s disconnected (%d total)\n", id, h.hub.Count())
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return nil
		}
	}
}
