package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"demosim/internal/model"
)

// Hub fans demo progress events out to WebSocket watchers. Any number of
// watchers may follow one demo; the stream closes when the demo finishes.
type Hub struct {
	// demoID -> watcher connections
	watchers map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage
	closeDemo  chan string

	logger *zap.Logger
}

// Connection represents one watcher's WebSocket connection
type Connection struct {
	DemoID string
	Send   chan []byte
	Hub    *Hub
}

type broadcastMessage struct {
	demoID string
	data   []byte
}

// NewHub creates a running WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		watchers:   make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *broadcastMessage, 256),
		closeDemo:  make(chan string),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.watchers[conn.DemoID] == nil {
				h.watchers[conn.DemoID] = make(map[*Connection]bool)
			}
			h.watchers[conn.DemoID][conn] = true
			h.mu.Unlock()
			h.logger.Debug("watcher connected", zap.String("demoId", conn.DemoID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.watchers[conn.DemoID]; ok && conns[conn] {
				delete(conns, conn)
				close(conn.Send)
				if len(conns) == 0 {
					delete(h.watchers, conn.DemoID)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("watcher disconnected", zap.String("demoId", conn.DemoID))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.watchers[msg.demoID] {
				select {
				case conn.Send <- msg.data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case demoID := <-h.closeDemo:
			h.mu.Lock()
			for conn := range h.watchers[demoID] {
				close(conn.Send)
			}
			delete(h.watchers, demoID)
			h.mu.Unlock()
		}
	}
}

// Register adds a watcher connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a watcher connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToDemo sends a progress event to all watchers of a demo
// (implements service.Broadcaster)
func (h *Hub) BroadcastToDemo(demoID string, event model.ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("event marshal failed", zap.String("demoId", demoID), zap.Error(err))
		return
	}
	h.broadcast <- &broadcastMessage{demoID: demoID, data: data}
}

// CloseDemo disconnects all watchers of a finished demo
// (implements service.Broadcaster)
func (h *Hub) CloseDemo(demoID string) {
	h.closeDemo <- demoID
}
