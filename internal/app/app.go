package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"

	"revpulse/internal/config"
	apierrors "revpulse/internal/errors"
	"revpulse/internal/exporter"
	"revpulse/internal/files"
	"revpulse/internal/infrastructure"
	"revpulse/internal/ingest"
	customMiddleware "revpulse/internal/middleware"
	"revpulse/internal/services"
	"revpulse/internal/sources"
	handlers "revpulse/internal/transport/http"
	ws "revpulse/internal/websocket"
	"revpulse/pkg/contracts"
)

// AppName is the display name used in logs
const AppName = "RevPulse"

// Application is the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics
	Files         *files.Manager
	Datasets      *ingest.Cache
	Reports       *services.ReportService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
	ErrorHandler  *apierrors.ErrorHandler
	Router        *chi.Mux
	Server        *http.Server

	started  bool
	listener net.Listener
}

// New wires an application from cfg. A nil logger initializes the global
// logger from cfg.Logging.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if logger == nil {
		var err error
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("source_mode", cfg.Sources.Mode))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Files:         files.NewManager(""),
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the ingestion pipeline and the services on top
func (a *Application) initializeServices() error {
	locator, err := sources.New(a.Config.Sources, a.Logger)
	if err != nil {
		return err
	}

	loader := ingest.NewLoader(locator,
		ingest.WithLogger(a.Logger),
		ingest.WithMetrics(a.Metrics),
		ingest.WithTracer(a.OTelProviders.Tracer))
	a.Datasets = ingest.NewCache(loader, a.Logger, a.Metrics)

	a.Reports = services.NewReportService(a.Datasets, a.Logger,
		services.WithMetrics(a.Metrics),
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithExportOptions(exporter.Options{BOMPrefix: a.Config.Export.BOMPrefix}))

	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)
	a.HealthService = services.NewHealthService(a.Reports, a.WebSocketHub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Only middleware that leaves the ResponseWriter unwrapped may run
	// before the WebSocket upgrade
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := ws.NewHandler(a.WebSocketHub, a.Reports, a.Config.WebSocket, a.Config.Server.AllowedOrigins, a.Logger)
	r.Handle("/ws/report", wsHandler)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → headers
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Server.AllowedOrigins,
		}))

		r.Route("/api", func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)

			var limiter *customMiddleware.RateLimiter
			if rl := a.Config.Server.RateLimit; rl.Enabled {
				limiter = customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.ErrorHandler, a.Logger)
			}
			reportHandler := handlers.NewReportHandler(a.Reports, limiter, a.Logger, a.ErrorHandler)
			r.Mount("/", reportHandler.Routes())
		})

		metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
		r.Mount("/metrics", metricsHandler.Routes())
	})

	// Registered last so they propagate to every mounted sub-router
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port)),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Warm loads the dataset once so the first request is served from cache.
// Failures are logged and left to readiness; the server still starts.
func (a *Application) Warm(ctx context.Context) {
	result, err := a.Datasets.Get(ctx)
	if err != nil {
		a.Logger.WarnContext(ctx, "initial dataset load failed", slog.String("error", err.Error()))
		return
	}
	a.Logger.InfoContext(ctx, "dataset loaded",
		slog.Int("records", result.Dataset.Len()),
		slog.Int("sources", len(result.Sources)),
		slog.String("fingerprint", result.Fingerprint))
}

// Start starts the hub and the HTTP server. A listen failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	if a.started {
		return errors.New("application already started")
	}
	a.started = true

	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	a.WebSocketHub.Start()
	a.Reports.SetBroadcaster(a.WebSocketHub)
	a.Warm(ctx)

	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = listener

	go func() {
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("url", "http://"+listener.Addr().String()))
	return nil
}

// Addr returns the address the server listens on, or "" before Start
func (a *Application) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.started {
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
		a.WebSocketHub.Stop()
		a.WebSocketHub.Wait()
	}

	if err := a.Close(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Close flushes telemetry. One-shot commands call it instead of Stop.
func (a *Application) Close(ctx context.Context) error {
	if a.OTelProviders == nil {
		return nil
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		return fmt.Errorf("telemetry shutdown error: %w", err)
	}
	return nil
}

// Run runs the server until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
