package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"wallet-pnl/internal/domain"
	"wallet-pnl/internal/observability"
	"wallet-pnl/internal/wallet"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 512
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Update is the message pushed to subscribers after every refresh.
type Update struct {
	Type   string            `json:"type"` // always "pnl"
	Wallet string            `json:"wallet"`
	Data   *domain.WindowSet `json:"data"`
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	wallet string
	send   chan []byte
}

// Hub fans refreshed window sets out to WebSocket clients subscribed to a
// wallet. It implements service.Publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{} // wallet -> clients
	log     zerolog.Logger
	metrics *observability.Metrics
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger, metrics *observability.Metrics) *Hub {
	if metrics == nil {
		metrics = observability.NewMetrics("", nil)
	}
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		log:     log.With().Str("component", "ws").Logger(),
		metrics: metrics,
	}
}

// Publish sends set to every subscriber of wallet. Slow clients drop the
// message instead of blocking the caller.
func (h *Hub) Publish(w string, set *domain.WindowSet) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := h.clients[w]
	if len(subs) == 0 {
		return
	}
	msg, err := json.Marshal(Update{Type: "pnl", Wallet: w, Data: set})
	if err != nil {
		h.log.Error().Err(err).Str("wallet", w).Msg("encode update")
		return
	}
	for c := range subs {
		select {
		case c.send <- msg:
		default:
			h.log.Warn().Str("wallet", w).Msg("dropping update for slow client")
		}
	}
}

// Subscribers returns the number of clients watching wallet.
func (h *Hub) Subscribers(w string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[w])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w, subs := range h.clients {
		for c := range subs {
			close(c.send)
			h.metrics.WSSubscribers.Dec()
		}
		delete(h.clients, w)
	}
}

// HandleWS upgrades GET /ws?wallet=<address> and subscribes the connection
// to that wallet's updates.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	addr, err := wallet.ValidateWallet(r.URL.Query().Get("wallet"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	c := &client{hub: h, conn: conn, wallet: addr, send: make(chan []byte, sendBufferSize)}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.clients[c.wallet]
	if !ok {
		subs = make(map[*client]struct{})
		h.clients[c.wallet] = subs
	}
	subs[c] = struct{}{}
	h.metrics.WSSubscribers.Inc()
	h.log.Debug().Str("wallet", c.wallet).Int("subscribers", len(subs)).Msg("client connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.clients[c.wallet]
	if _, ok := subs[c]; !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.clients, c.wallet)
	}
	close(c.send)
	h.metrics.WSSubscribers.Dec()
	h.log.Debug().Str("wallet", c.wallet).Msg("client disconnected")
}

// readPump discards client frames; it exists to process pongs and notice
// disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn().Err(err).Msg("unexpected close")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
