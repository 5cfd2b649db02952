// Package ws delivers race and matchmaking events to connected clients.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

// InboundFunc handles one raw message received from a client.
type InboundFunc func(userID string, data []byte)

// Hub fans structured events out to every connected client and forwards
// inbound client messages to a single handler. It knows nothing about race
// semantics; it only moves bytes.
type Hub struct {
	mu      sync.RWMutex
	conns   map[*websocket.Conn]string
	inbound InboundFunc

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub returns a hub ready to accept connections.
func NewHub(inbound InboundFunc) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		conns:   map[*websocket.Conn]string{},
		inbound: inbound,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Envelope wraps every outbound event with its kind, so clients can
// dispatch without sniffing payload shapes.
type Envelope struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

// Broadcast sends one event to every connected client. Slow or failed
// connections are dropped rather than stalling the rest.
func (h *Hub) Broadcast(kind string, payload interface{}) {
	data, err := json.Marshal(Envelope{Kind: kind, Payload: payload})
	if err != nil {
		return
	}
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
		err := c.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.drop(c)
		}
	}
}

// ServeHTTP upgrades the request and pumps inbound messages until the
// client disconnects. The user is identified by the "user" query
// parameter; authentication is a collaborator concern outside this core.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	userID := r.URL.Query().Get("user")

	h.mu.Lock()
	h.conns[conn] = userID
	h.mu.Unlock()

	defer h.drop(conn)
	for {
		_, data, err := conn.Read(h.ctx)
		if err != nil {
			return
		}
		if h.inbound != nil {
			h.inbound(userID, data)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every client and stops the hub.
func (h *Hub) Close() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		_ = c.Close(websocket.StatusNormalClosure, "shutting down")
	}
	h.conns = map[*websocket.Conn]string{}
}

func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
	}
	h.mu.Unlock()
	_ = c.Close(websocket.StatusNormalClosure, "")
}
