package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	apierrors "revpulse/internal/errors"
	"revpulse/internal/infrastructure"
	"revpulse/internal/middleware"
	api "revpulse/pkg/contracts/api/v1"
	"revpulse/pkg/contracts/domain"
	"revpulse/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Outbound messages buffered per client
	sendBufferSize = 32
)

// Client is a middleman between a WebSocket connection and the hub.
// Each client carries its own filter; snapshots are computed for it alone.
type Client struct {
	hub         *Hub
	conn        Connection
	send        chan []byte
	id          string
	remoteAddr  string
	traceID     string
	connectedAt time.Time

	reports   ReportProvider
	validator *middleware.Validator
	pingEvery time.Duration
	pongWait  time.Duration
	readLimit int64
	logger    *slog.Logger

	mu     sync.RWMutex
	filter domain.FilterState

	// serializes snapshot computation so they reach the hub in order
	snapMu sync.Mutex
}

// Filter returns the client's current filter
func (c *Client) Filter() domain.FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Client) setFilter(f domain.FilterState) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
}

// ID returns the client identifier announced in the connect message
func (c *Client) ID() string {
	return c.id
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.readLimit)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error",
					slog.String("client_id", c.id),
					slog.String("error", err.Error()))
			}
			return
		}
		c.handleMessage(message)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed",
					slog.String("client_id", c.id),
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg events.InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError(events.ErrorCodeInvalidMessage, "message is not valid JSON", nil)
		return
	}

	switch msg.Type {
	case events.MessageTypeFilterUpdate:
		var req api.FilterRequest
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				c.sendError(events.ErrorCodeInvalidFilter, "filter is malformed", nil)
				return
			}
		}
		if err := c.validator.ValidateStruct(req); err != nil {
			var apiErr *apierrors.APIError
			if errors.As(err, &apiErr) {
				c.sendError(events.ErrorCodeInvalidFilter, apiErr.Message, apiErr.Details)
			} else {
				c.sendError(events.ErrorCodeInvalidFilter, err.Error(), nil)
			}
			return
		}

		c.setFilter(req.ToFilterState())
		c.logger.Debug("filter updated", slog.String("client_id", c.id))
		c.pushSnapshot(context.Background())

	case events.MessageTypePing:
		c.hub.sendTo(c, events.MessageTypePong, nil)

	default:
		c.sendError(events.ErrorCodeUnknownType, "unknown message type: "+string(msg.Type), nil)
	}
}

// pushSnapshot computes the report for the client's current filter and
// queues it. Report failures are sent to the client as error messages.
func (c *Client) pushSnapshot(ctx context.Context) {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()

	ctx = infrastructure.WithTraceID(ctx, c.traceID)
	view, err := c.reports.Report(ctx, c.Filter())
	if err != nil {
		c.logger.Warn("snapshot failed",
			slog.String("client_id", c.id),
			slog.String("error", err.Error()))
		c.sendError(events.ErrorCodeReportFailed, err.Error(), nil)
		return
	}
	c.hub.sendTo(c, events.MessageTypeReportSnapshot, view)
}

func (c *Client) sendError(code, message string, details interface{}) {
	c.hub.sendTo(c, events.MessageTypeError, events.ErrorData{
		Code:    code,
		Message: message,
		Details: details,
		Retry:   code == events.ErrorCodeReportFailed,
	})
}
