package offer

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storefront/internal/pkg/response"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type Handler struct {
	service  *Service
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler accepts websocket connections from allowedOrigins, or from
// any origin when the list is empty.
func NewHandler(service *Service, hub *Hub, allowedOrigins []string, log *zap.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		service: service,
		hub:     hub,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/offers/active", h.GetActive)
	api.GET("/offers/live", h.Live)
}

// GetActive handles GET /api/offers/active. offer is null when none runs.
func (h *Handler) GetActive(c *gin.Context) {
	offer, err := h.service.Active(c.Request.Context())
	if err != nil {
		h.log.Error("loading active offer", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load flash offer")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offer": offer})
}

// Live upgrades to a websocket, sends the running offer and then every
// change until the client goes away.
func (h *Handler) Live(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	id := h.hub.Register(conn)
	defer h.hub.Unregister(id)

	current, err := h.service.Active(c.Request.Context())
	if err != nil {
		h.log.Error("loading active offer", zap.Error(err))
		return
	}
	if !h.hub.SendTo(id, Event{Type: EventSnapshot, Offer: current}) {
		return
	}

	// Clients never send data; reading only surfaces the close.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
