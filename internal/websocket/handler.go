package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"revpulse/internal/config"
	"revpulse/internal/infrastructure"
	"revpulse/internal/middleware"
	"revpulse/pkg/contracts/domain"
)

// Handler upgrades HTTP requests to live report connections
type Handler struct {
	hub       *Hub
	reports   ReportProvider
	upgrader  websocket.Upgrader
	validator *middleware.Validator
	cfg       config.WebSocketConfig
	logger    *slog.Logger
}

// NewHandler creates a WebSocket handler. Connections whose Origin is not in
// allowedOrigins are refused; requests without an Origin header are accepted.
func NewHandler(hub *Hub, reports ReportProvider, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Handler{
		hub:       hub,
		reports:   reports,
		validator: middleware.NewValidator(),
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || middleware.OriginAllowed(allowedOrigins, origin)
		},
	}
	return h
}

// ServeHTTP handles the upgrade and starts the client pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetRequestID(r.Context())
	if traceID == "" {
		traceID = infrastructure.GenerateTraceID()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Warn("websocket upgrade failed",
			slog.String("trace_id", traceID),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	client := h.newClient(NewConnectionWrapper(conn), traceID)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
	// registration queued the connect message, so the snapshot follows it
	go client.pushSnapshot(context.Background())
}

func (h *Handler) newClient(conn Connection, traceID string) *Client {
	id := uuid.New().String()
	return &Client{
		hub:         h.hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		id:          id,
		remoteAddr:  conn.RemoteAddr(),
		traceID:     traceID,
		connectedAt: time.Now(),
		reports:     h.reports,
		validator:   h.validator,
		pingEvery:   h.cfg.PingPeriod,
		pongWait:    h.cfg.PongWait,
		readLimit:   h.cfg.MaxMessageSize,
		logger:      h.logger.With(slog.String("client_id", id)),
		filter:      domain.DefaultFilter(),
	}
}
