package stream

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gauge tracks the number of connected clients.
type Gauge interface {
	SetStreamClients(n int)
}

// Client is one connected stream subscriber. Payloads queued for it are read
// from Outbound by the connection's writer.
type Client struct {
	ID     string
	UserID string
	send   chan []byte
}

// Outbound returns the client's queue. It is closed when the hub drops the client.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// Hub fans payloads out to connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	buffer  int
	logger  *zap.Logger
	gauge   Gauge
}

// NewHub creates a hub whose clients queue up to buffer payloads.
func NewHub(buffer int, logger *zap.Logger, gauge Gauge) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		buffer:  buffer,
		logger:  logger,
		gauge:   gauge,
	}
}

// Register adds a client for userID.
func (h *Hub) Register(userID string) *Client {
	client := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, h.buffer),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("stream client connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", userID),
		zap.Int("clients", count))
	h.report(count)
	return client
}

// Unregister removes the client and closes its queue. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	removed := h.removeLocked(client)
	count := len(h.clients)
	h.mu.Unlock()

	if removed {
		h.logger.Info("stream client disconnected",
			zap.String("client_id", client.ID),
			zap.Int("clients", count))
		h.report(count)
	}
}

// Broadcast queues payload for every client and returns how many received it.
// Clients whose queue is full are dropped.
func (h *Hub) Broadcast(payload []byte) int {
	var slow []*Client
	delivered := 0

	h.mu.RLock()
	for _, client := range h.clients {
		select {
		case client.send <- payload:
			delivered++
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, client := range slow {
			if h.removeLocked(client) {
				h.logger.Warn("dropping slow stream client", zap.String("client_id", client.ID))
			}
		}
		count := len(h.clients)
		h.mu.Unlock()
		h.report(count)
	}
	return delivered
}

// SendTo queues payload for a single client. It reports false when the client
// is gone or its queue is full.
func (h *Hub) SendTo(client *Client, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client.ID]; !ok {
		return false
	}
	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) removeLocked(client *Client) bool {
	if _, ok := h.clients[client.ID]; !ok {
		return false
	}
	delete(h.clients, client.ID)
	close(client.send)
	return true
}

func (h *Hub) report(count int) {
	if h.gauge != nil {
		h.gauge.SetStreamClients(count)
	}
}
