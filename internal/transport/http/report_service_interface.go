package http

import (
	"context"
	"io"

	"revpulse/internal/ingest"
	"revpulse/internal/services"
	"revpulse/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations the handlers need
type ReportServiceInterface interface {
	Report(ctx context.Context, filter domain.FilterState) (*services.ReportView, error)
	Filters(ctx context.Context) (domain.FilterOptions, error)
	Transactions(ctx context.Context, filter domain.FilterState) ([]domain.CanonicalRecord, error)
	Sources(ctx context.Context) ([]ingest.SourceReport, error)
	Reload(ctx context.Context) (*services.ReloadSummary, error)
	CacheStats() ingest.CacheStats
	Export(ctx context.Context, w io.Writer, format string, filter domain.FilterState) (int, error)
}
