// Package app wires the revenue report together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Configuration is loaded by the caller (config.Load)
//	2. Logging and OpenTelemetry are initialized
//	3. The source locator, loader and dataset cache are built
//	4. The report and health services are created
//	5. The WebSocket hub, handlers and middleware are mounted on a chi router
//
// The CLI uses the same Application for one-shot commands (report, export,
// sources) and only calls Start for the serve command, so nothing listens or
// runs in the background unless the server is requested.
//
// # Graceful Shutdown
//
// Stop drains the HTTP server, disconnects WebSocket clients and flushes the
// telemetry providers. Run blocks until SIGINT or SIGTERM and then stops.
//
// # Error Handling
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
