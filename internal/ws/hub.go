package ws

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lracdim/trazer-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var errNotRegistered = errors.New("connection not registered")

type envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// connection pairs a websocket conn with its write lock. gorilla/websocket
// supports at most one concurrent writer per conn, so every write (data and
// ping frames alike) must go through the wrapper's methods.
type connection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *connection) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(v)
}

func (c *connection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Hub is the websocket-backed Notifier. Every connection joins its user's
// private room; non-guard connections additionally join the dashboard
// broadcast set. The registry is the only long-lived shared state in the
// realtime path and is guarded for concurrent register/unregister/broadcast.
type Hub struct {
	mu         sync.RWMutex
	conns      map[*websocket.Conn]*connection
	dashboards map[*websocket.Conn]bool
	users      map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		conns:      make(map[*websocket.Conn]*connection),
		dashboards: make(map[*websocket.Conn]bool),
		users:      make(map[string]map[*websocket.Conn]bool),
	}
}

// Register adds a connection to the hub. Dashboard membership is derived
// from the user's role: guards only receive targeted events.
func (h *Hub) Register(userID, role string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[conn] = &connection{conn: conn}

	if h.users[userID] == nil {
		h.users[userID] = make(map[*websocket.Conn]bool)
	}
	h.users[userID][conn] = true

	if role != models.RoleGuard {
		h.dashboards[conn] = true
	}
}

func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, conn)
	delete(h.dashboards, conn)

	if conns, exists := h.users[userID]; exists {
		delete(conns, conn)

		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// BroadcastToDashboards sends an event to every dashboard connection.
// Failed connections are dropped from the registry and closed; the caller
// never sees an error.
func (h *Hub) BroadcastToDashboards(event string, payload interface{}) {
	h.mu.RLock()

	if len(h.dashboards) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy the connection list to avoid holding the lock during writes.
	conns := make([]*connection, 0, len(h.dashboards))
	for conn := range h.dashboards {
		if c := h.conns[conn]; c != nil {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		h.send(c, event, payload)
	}
}

// SendToUser sends an event to every connection of a single user.
func (h *Hub) SendToUser(userID string, event string, payload interface{}) {
	h.mu.RLock()

	conns := make([]*connection, 0, len(h.users[userID]))
	for conn := range h.users[userID] {
		if c := h.conns[conn]; c != nil {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		h.send(c, event, payload)
	}
}

// SendTo delivers one event to a single registered connection.
func (h *Hub) SendTo(conn *websocket.Conn, event string, payload interface{}) error {
	h.mu.RLock()
	c := h.conns[conn]
	h.mu.RUnlock()

	if c == nil {
		return errNotRegistered
	}

	return c.writeJSON(envelope{Event: event, Data: payload})
}

// Ping sends a ping frame on a registered connection, serialized with any
// concurrent broadcasts to it.
func (h *Hub) Ping(conn *websocket.Conn) error {
	h.mu.RLock()
	c := h.conns[conn]
	h.mu.RUnlock()

	if c == nil {
		return errNotRegistered
	}

	return c.ping()
}

// KeepAlive pings the connection every pingPeriod until done is closed or a
// write fails. Runs in the caller's goroutine.
func (h *Hub) KeepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := h.Ping(conn); err != nil {
				log.Printf("Ping failed: %v", err)
				return
			}
		}
	}
}

func (h *Hub) send(c *connection, event string, payload interface{}) {
	if err := c.writeJSON(envelope{Event: event, Data: payload}); err != nil {
		log.Printf("Failed to deliver %s to client: %v", event, err)
		h.drop(c.conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	delete(h.dashboards, conn)
	for userID, conns := range h.users {
		if conns[conn] {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.users, userID)
			}
		}
	}
	h.mu.Unlock()

	conn.Close()
}

// DashboardCount returns the number of live dashboard connections.
func (h *Hub) DashboardCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.dashboards)
}
