package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"socialcore/internal/middleware"
	"socialcore/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerProfile = 8
	maxTotalConns      = 10000
)

var (
	ErrHubClosed        = errors.New("notification hub is shut down")
	ErrServerConnLimit  = errors.New("server connection limit reached")
	ErrProfileConnLimit = errors.New("profile connection limit reached")
)

// Hub maps profile names to their open websocket clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*Client]struct{})}
}

// Register adds a connection for profile. conn may be nil in tests.
func (h *Hub) Register(profile string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	m, ok := h.conns[profile]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[profile] = m
	}
	if len(m) >= maxConnsPerProfile {
		return nil, ErrProfileConnLimit
	}

	client := newClient(h, conn, profile)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send channel. Safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	m, ok := h.conns[client.Profile]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	close(client.Send)
	h.totalConns--
	observability.WebSocketConnections.Dec()
	if len(m) == 0 {
		delete(h.conns, client.Profile)
	}
}

// Broadcast queues message for every connection of profile.
func (h *Hub) Broadcast(profile, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for c := range h.conns[profile] {
		c.TrySend(data)
	}
}

// ConnectionCount returns the number of open connections for profile.
func (h *Hub) ConnectionCount(profile string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[profile])
}

// StartWiring forwards every profile channel message from n to the matching
// connections. Without Redis, n delivers straight into this hub.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	if n.rdb == nil {
		n.local = h.Broadcast
		return nil
	}
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		name, ok := ProfileFromChannel(channel)
		if !ok {
			middleware.Logger.Warn("invalid notification channel", slog.String("channel", channel))
			return
		}
		h.Broadcast(name, payload)
	})
}

// Shutdown closes every client's send channel, which makes its WritePump send
// a close frame, and rejects new registrations.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	for _, clients := range h.conns {
		for client := range clients {
			h.removeLocked(client)
		}
	}
	return nil
}
