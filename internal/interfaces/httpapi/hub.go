package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"etfmon/internal/application/port"
	"etfmon/internal/domain"
)

const writeWait = 5 * time.Second

// Hub broadcasts snapshot and transaction events to connected websocket clients.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Hub) Name() string { return "websocket" }

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// serve upgrades the request and keeps the client until it disconnects.
// hello, when set, is sent first so new clients do not wait for the next cycle.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, hello *port.Event) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	if hello != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(hello); err != nil {
			h.mu.Unlock()
			conn.Close()
			return
		}
	}
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Info().Str("remote", r.RemoteAddr).Int("clients", n).Msg("websocket client connected")

	// clients never send anything useful; reading detects the close
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
		log.Info().Msg("websocket client disconnected")
	}
}

func (h *Hub) broadcast(evt port.Event) {
	h.mu.Lock()
	var dead []*websocket.Conn
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(evt); err != nil {
			dead = append(dead, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range dead {
		h.drop(conn)
	}
}

func (h *Hub) PublishSnapshot(ctx context.Context, snap domain.Snapshot) error {
	h.broadcast(port.NewSnapshotEvent(snap))
	return nil
}

func (h *Hub) PublishTransaction(ctx context.Context, inst *domain.Instrument, tx domain.Transaction) error {
	h.broadcast(port.NewTransactionEvent(inst, tx))
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	return nil
}

var _ port.Publisher = (*Hub)(nil)
