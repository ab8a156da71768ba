package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"revpulse/pkg/contracts"
)

// ReadinessSource reports whether a dataset is loaded
type ReadinessSource interface {
	Ready() (bool, string)
}

// ClientCounter reports connected live clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	readiness ReadinessSource
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. clients may be nil when no
// WebSocket hub is running.
func NewHealthService(readiness ReadinessSource, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		readiness: readiness,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports ready once a dataset has been loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]interface{}{
			"dataset":   hs.checkDatasetHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.readiness == nil {
		return ServiceHealth{Status: "not_ready", Message: "report service not initialized"}
	}

	loaded, lastError := hs.readiness.Ready()
	switch {
	case !loaded && lastError != "":
		return ServiceHealth{Status: "not_ready", Message: lastError}
	case !loaded:
		return ServiceHealth{Status: "not_ready", Message: "dataset not loaded yet"}
	case lastError != "":
		return ServiceHealth{Status: "ready", Message: "serving previous dataset: " + lastError}
	}
	return ServiceHealth{Status: "ready", Message: "dataset loaded"}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "ready", Message: "live updates disabled"}
	}
	return ServiceHealth{
		Status: "ready",
		Uptime: time.Since(hs.startTime).String(),
	}
}
