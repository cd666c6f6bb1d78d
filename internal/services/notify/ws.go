package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"AstroPulse/internal/domain/models"
	domsvc "AstroPulse/internal/domain/service"
	applogger "AstroPulse/pkg/logger"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsSendBuffer   = 16
)

// WSHub is the browser push channel: connected clients receive every alert
// event as a JSON frame. A slow client gets dropped rather than blocking the
// broadcast.
type WSHub struct {
	upgrader websocket.Upgrader
	l        *applogger.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewWSHub(l *applogger.Logger) *WSHub {
	return &WSHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		l:       l,
		clients: make(map[*wsClient]struct{}),
	}
}

func (h *WSHub) Name() string { return "websocket" }

// Notify broadcasts the event to every connected client.
func (h *WSHub) Notify(_ context.Context, ev models.AlertEvent, _ models.AlertNotification) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.broadcast(b)
	return nil
}

// Serve upgrades an HTTP request and keeps the connection registered until
// the peer goes away.
func (h *WSHub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	go h.readLoop(c)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *WSHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *WSHub) broadcast(b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			// client is not keeping up
			h.dropLocked(c)
		}
	}
}

func (h *WSHub) writeLoop(c *wsClient) {
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.drop(c)
			return
		}
	}
	_ = c.conn.Close()
}

// readLoop drains control/client frames so pings are answered and closes are
// noticed.
func (h *WSHub) readLoop(c *wsClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *WSHub) drop(c *wsClient) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

func (h *WSHub) dropLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
	if h.l != nil {
		h.l.Debug("websocket client dropped")
	}
}

var _ domsvc.Notifier = (*WSHub)(nil)
