// Package services implements the business logic layer of RevPulse.
// It sits between the transports (CLI, HTTP, WebSocket) and the ingest and
// analytics packages, so every surface reports the same numbers.
//
// # Services
//
//	- ReportService: aggregates the cached dataset for a FilterState, lists
//	  filter options, transactions and source outcomes, reloads the dataset
//	  and renders CSV or XLSX exports.
//	- HealthService: liveness, readiness and version information.
//
// # Common Service Pattern
//
// Services take their collaborators as small interfaces and a *slog.Logger:
//
//	svc := services.NewReportService(cache, logger,
//		services.WithMetrics(metrics),
//		services.WithBroadcaster(hub))
//
//	view, err := svc.Report(ctx, domain.FilterState{Periods: []string{"June"}})
//
// Errors from ingestion are returned unchanged as *errors.AppError values so
// transports can map them to their own representation.
package services
