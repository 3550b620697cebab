package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// WSConn adapts a gorilla websocket connection to the hub's Conn interface.
// Gorilla permits only one concurrent writer, so writes are serialized here.
type WSConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// NewWSConn wraps an upgraded websocket connection.
func NewWSConn(ws *websocket.Conn) *WSConn {
	return &WSConn{ws: ws}
}

// WriteMessage sends one text frame under a write deadline.
func (c *WSConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close closes the underlying connection.
func (c *WSConn) Close() error {
	return c.ws.Close()
}
