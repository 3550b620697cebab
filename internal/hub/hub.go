// Package hub fans live production, graph, and alert payloads out to a
// dynamic set of connected subscribers.
package hub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mohdhamzakhan/PLCDataCollector/internal/models"
)

// Message types pushed to subscribers.
const (
	MsgTypeConnection     = "connection"
	MsgTypeProductionData = "production-data"
	MsgTypeGraphData      = "graph-data"
	MsgTypeAlert          = "alert"
)

// Conn is one subscriber's outbound channel. The hub owns the connection for
// its registered lifetime and closes it exactly once on removal.
type Conn interface {
	WriteMessage(data []byte) error
	Close() error
}

type subscriber struct {
	id   string
	conn Conn
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() {
		s.conn.Close()
	})
}

// Hub maintains the subscriber registry and broadcasts serialized payloads.
// The registry lock is never held across a send: broadcasts snapshot the
// registry, deliver outside the lock, and sweep dead subscribers only after
// the full pass completes.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*subscriber
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{subs: make(map[string]*subscriber)}
}

// Register adds a subscriber and sends it a one-time welcome payload.
func (h *Hub) Register(id string, conn Conn) {
	sub := &subscriber{id: id, conn: conn}

	h.mu.Lock()
	h.subs[id] = sub
	h.mu.Unlock()

	fmt.Printf("[Hub] Subscriber added: %s\n", id)

	welcome, err := json.Marshal(map[string]any{
		"type":         MsgTypeConnection,
		"message":      "Connected to PLC Data Collector",
		"connectionId": id,
		"timestamp":    time.Now(),
	})
	if err == nil {
		if err := sub.conn.WriteMessage(welcome); err != nil {
			h.Unregister(id)
		}
	}
}

// Unregister removes a subscriber and closes its connection if still open.
// Safe to call multiple times and from any exit path; the close happens
// exactly once.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if ok {
		sub.close()
		fmt.Printf("[Hub] Subscriber removed: %s\n", id)
	}
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast serializes the message once and attempts delivery to every
// currently registered subscriber. Subscribers whose send fails are removed
// after the pass; one failing subscriber never blocks delivery to the rest.
func (h *Hub) Broadcast(message any) {
	payload, err := json.Marshal(message)
	if err != nil {
		fmt.Printf("[Hub] Failed to serialize broadcast: %v\n", err)
		return
	}

	h.mu.RLock()
	snapshot := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	var dead []string
	for _, sub := range snapshot {
		if err := sub.conn.WriteMessage(payload); err != nil {
			fmt.Printf("[Hub] Failed to send to subscriber %s: %v\n", sub.id, err)
			dead = append(dead, sub.id)
		}
	}

	for _, id := range dead {
		h.Unregister(id)
	}
}

// BroadcastProduction pushes a production snapshot for one line.
func (h *Hub) BroadcastProduction(lineID string, snapshot *models.ProductionSnapshot) {
	h.Broadcast(map[string]any{
		"type":      MsgTypeProductionData,
		"lineId":    lineID,
		"data":      snapshot,
		"timestamp": time.Now(),
	})
}

// BroadcastGraph pushes live graph series for one line.
func (h *Hub) BroadcastGraph(lineID string, graph *models.RealTimeGraphData) {
	h.Broadcast(map[string]any{
		"type":      MsgTypeGraphData,
		"lineId":    lineID,
		"data":      graph,
		"timestamp": time.Now(),
	})
}

// BroadcastAlert pushes one alert.
func (h *Hub) BroadcastAlert(alert models.Alert) {
	h.Broadcast(map[string]any{
		"type":      MsgTypeAlert,
		"data":      alert,
		"timestamp": time.Now(),
	})
}
