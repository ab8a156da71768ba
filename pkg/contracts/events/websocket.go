// Package events contains the WebSocket message contracts of the live
// report stream.
package events

import (
	"encoding/json"
	"time"
)

// Protocol version
const (
	ProtocolVersion = "1.0"
	ProtocolName    = "revpulse-report-protocol"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server
	MessageTypeFilterUpdate MessageType = "filter:update"
	MessageTypePing         MessageType = "ping"

	// Server to client
	MessageTypeReportSnapshot  MessageType = "report:snapshot"
	MessageTypeDatasetReloaded MessageType = "dataset:reloaded"
	MessageTypeConnect         MessageType = "connect"
	MessageTypePong            MessageType = "pong"
	MessageTypeError           MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage is a server-sent message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// InboundMessage is a client-sent message. Data is decoded according to Type.
type InboundMessage struct {
	ID   string          `json:"id,omitempty"`
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ConnectData greets a newly connected client
type ConnectData struct {
	ClientID string `json:"client_id"`
	Protocol string `json:"protocol"`
	Version  string `json:"version"`
}

// ErrorData describes a rejected client message
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Retry   bool        `json:"retry"`
}

// Error codes sent in ErrorData
const (
	ErrorCodeInvalidMessage = "INVALID_MESSAGE"
	ErrorCodeUnknownType    = "UNKNOWN_TYPE"
	ErrorCodeInvalidFilter  = "INVALID_FILTER"
	ErrorCodeReportFailed   = "REPORT_FAILED"
)
