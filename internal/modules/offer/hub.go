package offer

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) send(v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(v)
}

// Hub fans offer events out to every connected storefront.
type Hub struct {
	peers map[string]*peer
	mutex sync.RWMutex
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{peers: make(map[string]*peer), log: log}
}

// Register returns the id to Unregister with.
func (h *Hub) Register(conn *websocket.Conn) string {
	id := uuid.NewString()
	h.mutex.Lock()
	h.peers[id] = &peer{conn: conn}
	h.mutex.Unlock()
	return id
}

func (h *Hub) Unregister(id string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if p, ok := h.peers[id]; ok {
		_ = p.conn.Close()
		delete(h.peers, id)
	}
}

func (h *Hub) SendTo(id string, message any) bool {
	h.mutex.RLock()
	p, ok := h.peers[id]
	h.mutex.RUnlock()
	if !ok {
		return false
	}
	if err := p.send(message); err != nil {
		h.Unregister(id)
		return false
	}
	return true
}

// Broadcast drops peers whose write fails.
func (h *Hub) Broadcast(message any) int {
	h.mutex.RLock()
	ids := make([]string, 0, len(h.peers))
	for id := range h.peers {
		ids = append(ids, id)
	}
	h.mutex.RUnlock()

	sent := 0
	for _, id := range ids {
		if h.SendTo(id, message) {
			sent++
		}
	}
	h.log.Debug("offer broadcast", zap.Int("peers", sent))
	return sent
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.peers)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, p := range h.peers {
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = p.conn.Close()
		delete(h.peers, id)
	}
}
