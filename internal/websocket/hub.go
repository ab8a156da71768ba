// Package websocket streams live report snapshots to browser clients.
//
// A client sends filter:update messages carrying a FilterState and receives
// a report:snapshot for it. When the dataset is reloaded every client gets a
// dataset:reloaded notice followed by a fresh snapshot for its own filter.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"revpulse/internal/infrastructure"
	"revpulse/pkg/contracts/events"
)

type outbound struct {
	client  *Client // nil broadcasts to every client
	payload []byte
	refresh bool
}

// Hub owns the set of connected clients. All writes to a client's send
// channel happen on the hub goroutine, which is also the only place that
// closes it.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	outbound   chan outbound

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.Metrics

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	quit     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewHub creates a new Hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.Metrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan outbound, 64),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in a new goroutine
func (h *Hub) Start() {
	go h.Run()
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			h.metrics.RecordWebSocketClients(context.Background(), 1)
			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

			h.deliver(client, h.encode(events.MessageTypeConnect, events.ConnectData{
				ClientID: client.id,
				Protocol: events.ProtocolName,
				Version:  events.ProtocolVersion,
			}, client.traceID))

		case client := <-h.unregister:
			if h.remove(client) {
				h.logger.Info("client unregistered",
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", h.ClientCount()))
			}

		case msg := <-h.outbound:
			if msg.client != nil {
				h.mu.RLock()
				registered := h.clients[msg.client]
				h.mu.RUnlock()
				if registered {
					h.deliver(msg.client, msg.payload)
				}
				continue
			}

			clients := h.snapshot()
			for _, c := range clients {
				h.deliver(c, msg.payload)
			}
			if msg.refresh {
				for _, c := range clients {
					go c.pushSnapshot(context.Background())
				}
			}
			h.logger.Debug("broadcast sent",
				slog.Int("client_count", len(clients)),
				slog.Int("message_size", len(msg.payload)))
		}
	}
}

// deliver queues payload for c, dropping the client if its buffer is full
func (h *Hub) deliver(c *Client, payload []byte) {
	if payload == nil {
		return
	}
	select {
	case c.send <- payload:
		h.mu.Lock()
		h.messagesSent++
		h.mu.Unlock()
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		h.logger.Warn("client send buffer full, disconnecting",
			slog.String("client_id", c.id))
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) bool {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return false
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	h.metrics.RecordWebSocketClients(context.Background(), -1)
	return true
}

func (h *Hub) closeAll() {
	for _, c := range h.snapshot() {
		h.remove(c)
	}
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// encode marshals a server message, returning nil on failure
func (h *Hub) encode(msgType events.MessageType, data interface{}, traceID string) []byte {
	payload, err := json.Marshal(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.New().String(),
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	})
	if err != nil {
		h.logger.Error("failed to marshal message",
			slog.String("type", string(msgType)),
			slog.String("error", err.Error()))
		return nil
	}
	return payload
}

func (h *Hub) enqueue(msg outbound) bool {
	if msg.payload == nil {
		return false
	}
	select {
	case h.outbound <- msg:
		return true
	case <-h.quit:
		return false
	}
}

// Broadcast sends a message to every client. A dataset:reloaded broadcast
// is followed by a fresh snapshot for each client's current filter.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	msgType := events.MessageType(messageType)
	h.enqueue(outbound{
		payload: h.encode(msgType, data, ""),
		refresh: msgType == events.MessageTypeDatasetReloaded,
	})
}

// sendTo queues a message for a single client
func (h *Hub) sendTo(c *Client, msgType events.MessageType, data interface{}) bool {
	return h.enqueue(outbound{client: c, payload: h.encode(msgType, data, c.traceID)})
}

// Register adds a client to the hub. It returns false once the hub stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop disconnects every client and ends the hub loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Wait blocks until Run has returned
func (h *Hub) Wait() {
	<-h.done
}

// HubMetrics is a snapshot of hub counters
type HubMetrics struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesDropped  int64 `json:"messages_dropped"`
}

// GetHubMetrics returns current hub metrics
func (h *Hub) GetHubMetrics() HubMetrics {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HubMetrics{
		ActiveClients:    len(h.clients),
		TotalConnections: h.totalConnections,
		MessagesSent:     h.messagesSent,
		MessagesDropped:  h.messagesDropped,
	}
}
