package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"revpulse/internal/websocket"
	api "revpulse/pkg/contracts/api/v1"
)

// HubMetricsSource exposes live connection counters
type HubMetricsSource interface {
	GetHubMetrics() websocket.HubMetrics
}

// MetricsHandler serves Prometheus metrics and live connection counters
type MetricsHandler struct {
	prometheus http.Handler
	hub        HubMetricsSource
}

// NewMetricsHandler serves exposition through prom, falling back to the
// default Prometheus gatherer when prom is nil. hub may be nil.
func NewMetricsHandler(prom http.Handler, hub HubMetricsSource) *MetricsHandler {
	if prom == nil {
		prom = promhttp.Handler()
	}
	return &MetricsHandler{prometheus: prom, hub: hub}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.prometheus.ServeHTTP)
	r.Get("/websocket", h.GetWebSocketMetrics)
	return r
}

// GetWebSocketMetrics handles GET /metrics/websocket
func (h *MetricsHandler) GetWebSocketMetrics(w http.ResponseWriter, r *http.Request) {
	var stats websocket.HubMetrics
	if h.hub != nil {
		stats = h.hub.GetHubMetrics()
	}
	render.JSON(w, r, api.Success(stats))
}
