package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// RoomOrders groups clients that opted into order lifecycle events.
// Membership is subscription bookkeeping: order events broadcast to every
// client, mirroring the upstream dashboard protocol, and the room exists
// so a future narrower delivery can honor the existing subscribe frames.
const RoomOrders = "orders"

// Event names pushed to dashboard clients.
const (
	EventConnected          = "connected"
	EventNewMessage         = "message:new"
	EventNewOrder           = "new_order"
	EventOrderUpdated       = "order_updated"
	EventOrderStatusChanged = "order_status_changed"
	EventPong               = "pong"
	EventSubscribed         = "subscribed"
	EventUnsubscribed       = "unsubscribed"
)

type envelope struct {
	Event     string `json:"event"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// Hub tracks connected dashboard clients and fans events out to them.
// Delivery is best-effort: no persistence, no replay, and a disconnected
// client simply misses the event. A connection is registered on attach and
// removed on detach or write failure.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	rooms  map[string]map[string]*Connection
	logger *slog.Logger
}

// NewHub constructs an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]*Connection),
		rooms:  make(map[string]map[string]*Connection),
		logger: logger,
	}
}

// Attach registers a connection, starts its write loop, and greets the
// client with a connected event.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.mu.Unlock()

	conn.Start()
	h.logger.Info("realtime client connected", "client_id", conn.ID)

	_ = conn.Send(Marshal(EventConnected, map[string]any{
		"message":  "connected to realtime channel",
		"clientId": conn.ID,
	}))
}

// Detach removes a connection from the hub and every room it joined.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	delete(h.conns, conn.ID)
	for room, members := range h.rooms {
		delete(members, conn.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
	h.logger.Info("realtime client disconnected", "client_id", conn.ID)
}

// Join adds the connection to a room.
func (h *Hub) Join(room string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn.ID]; !ok {
		return
	}
	members := h.rooms[room]
	if members == nil {
		members = make(map[string]*Connection)
		h.rooms[room] = members
	}
	members[conn.ID] = conn
}

// Leave removes the connection from a room.
func (h *Hub) Leave(room string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, conn.ID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast delivers a named event to every connected client and reports
// how many sends succeeded. Failed connections are detached.
func (h *Hub) Broadcast(event string, data any) int {
	payload := Marshal(event, data)

	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if err := conn.Send(payload); err != nil {
			h.Detach(conn)
			continue
		}
		delivered++
	}
	return delivered
}

// EmitNewMessage pushes a message:new event to every client.
func (h *Hub) EmitNewMessage(data any) {
	h.Broadcast(EventNewMessage, data)
}

// EmitNewOrder pushes a new_order event to every client.
func (h *Hub) EmitNewOrder(data any) {
	h.Broadcast(EventNewOrder, data)
}

// EmitOrderUpdated pushes an order_updated event to every client.
func (h *Hub) EmitOrderUpdated(data any) {
	h.Broadcast(EventOrderUpdated, data)
}

// EmitOrderStatusChanged pushes an order_status_changed event.
func (h *Hub) EmitOrderStatusChanged(orderID, oldStatus, newStatus string) {
	h.Broadcast(EventOrderStatusChanged, map[string]string{
		"orderId":   orderID,
		"oldStatus": oldStatus,
		"newStatus": newStatus,
	})
}

// ConnectedCount reports the number of attached clients.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close terminates every tracked connection and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[string]*Connection)
	h.rooms = make(map[string]map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "hub shutdown")
	}
}

// Marshal builds the wire envelope for a named event.
func Marshal(event string, data any) []byte {
	b, err := json.Marshal(envelope{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		// data came from our own structs; a marshal failure is a bug
		return []byte(`{"event":"` + event + `"}`)
	}
	return b
}
