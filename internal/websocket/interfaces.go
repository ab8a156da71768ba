package websocket

import (
	"context"
	"time"

	"revpulse/internal/services"
	"revpulse/pkg/contracts/domain"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// ReportProvider builds report views for a filter
type ReportProvider interface {
	Report(ctx context.Context, filter domain.FilterState) (*services.ReportView, error)
}
