package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"revpulse/internal/analytics"
	"revpulse/internal/exporter"
	"revpulse/internal/files"
	"revpulse/internal/infrastructure"
	"revpulse/internal/ingest"
	"revpulse/pkg/contracts/domain"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Empty-state messages
const (
	MessageNoData    = "No usable records were found in any source."
	MessageNoMatches = "No transactions match the current filters."
)

// DatasetProvider supplies the current dataset
type DatasetProvider interface {
	Get(ctx context.Context) (*ingest.LoadResult, error)
	Reload(ctx context.Context) (*ingest.LoadResult, error)
	Current() *ingest.LoadResult
	Stats() ingest.CacheStats
}

// Broadcaster publishes events to connected live clients
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

// ReportView is everything a client needs to render the report for one filter
type ReportView struct {
	Filter      domain.FilterState       `json:"filter"`
	Options     domain.FilterOptions     `json:"options"`
	Result      domain.AggregationResult `json:"result"`
	Empty       bool                     `json:"empty"`
	Message     string                   `json:"message,omitempty"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// ReloadSummary describes a completed reload
type ReloadSummary struct {
	Records     int                   `json:"records"`
	Sources     []ingest.SourceReport `json:"sources"`
	Fingerprint string                `json:"fingerprint"`
	LoadedAt    time.Time             `json:"loaded_at"`
}

// ReportService is the reporting façade shared by the CLI, HTTP and
// WebSocket surfaces.
type ReportService struct {
	datasets    DatasetProvider
	csv         *exporter.CSVWriter
	workbook    *exporter.WorkbookWriter
	broadcaster Broadcaster
	metrics     *infrastructure.Metrics
	tracer      trace.Tracer
	logger      *slog.Logger
}

// ReportOption configures a ReportService
type ReportOption func(*ReportService)

// WithBroadcaster publishes reload events through b
func WithBroadcaster(b Broadcaster) ReportOption {
	return func(s *ReportService) { s.broadcaster = b }
}

// WithMetrics records aggregation timings on m
func WithMetrics(m *infrastructure.Metrics) ReportOption {
	return func(s *ReportService) { s.metrics = m }
}

// WithTracer records report spans on tracer
func WithTracer(tracer trace.Tracer) ReportOption {
	return func(s *ReportService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithExportOptions sets CSV export rendering options
func WithExportOptions(opts exporter.Options) ReportOption {
	return func(s *ReportService) { s.csv = exporter.NewCSVWriter(opts) }
}

// NewReportService creates a report service over datasets
func NewReportService(datasets DatasetProvider, logger *slog.Logger, opts ...ReportOption) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ReportService{
		datasets: datasets,
		csv:      exporter.NewCSVWriter(exporter.Options{}),
		workbook: exporter.NewWorkbookWriter(),
		tracer:   tracenoop.NewTracerProvider().Tracer("revpulse/services"),
		logger:   logger.With(slog.String("component", "report_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetBroadcaster sets the reload event sink after construction
func (s *ReportService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Report aggregates the current dataset under filter
func (s *ReportService) Report(ctx context.Context, filter domain.FilterState) (*ReportView, error) {
	ctx, span := s.tracer.Start(ctx, "report.aggregate")
	defer span.End()

	result, err := s.datasets.Get(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	start := time.Now()
	agg := analytics.Aggregate(result.Dataset, filter)
	s.metrics.RecordAggregation(ctx, time.Since(start))

	view := &ReportView{
		Filter:      filter,
		Options:     analytics.Distinct(result.Dataset),
		Result:      agg,
		Empty:       agg.RecordCount == 0,
		GeneratedAt: time.Now().UTC(),
	}
	switch {
	case result.Empty():
		view.Message = MessageNoData
	case view.Empty:
		view.Message = MessageNoMatches
	}

	span.SetAttributes(
		attribute.Int("records.matched", agg.RecordCount),
		attribute.Bool("filter.default", filter.IsDefault()))
	s.logger.DebugContext(ctx, "report generated",
		slog.Int("records", agg.RecordCount),
		slog.String("total_revenue", agg.TotalRevenue.String()))
	return view, nil
}

// Filters returns the distinct values available to each filter dimension
func (s *ReportService) Filters(ctx context.Context) (domain.FilterOptions, error) {
	result, err := s.datasets.Get(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return analytics.Distinct(result.Dataset), nil
}

// Transactions returns the records selected by filter in dataset order
func (s *ReportService) Transactions(ctx context.Context, filter domain.FilterState) ([]domain.CanonicalRecord, error) {
	result, err := s.datasets.Get(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Filter(result.Dataset, filter), nil
}

// Sources reports how each source of the current dataset fared
func (s *ReportService) Sources(ctx context.Context) ([]ingest.SourceReport, error) {
	result, err := s.datasets.Get(ctx)
	if err != nil {
		return nil, err
	}
	return result.Sources, nil
}

// Reload re-reads the sources, rebuilding the dataset if they changed, and
// notifies live clients
func (s *ReportService) Reload(ctx context.Context) (*ReloadSummary, error) {
	result, err := s.datasets.Reload(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "reload failed", slog.String("error", err.Error()))
		return nil, err
	}

	summary := &ReloadSummary{
		Records:     result.Dataset.Len(),
		Sources:     result.Sources,
		Fingerprint: result.Fingerprint,
		LoadedAt:    result.LoadedAt,
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast("dataset:reloaded", summary)
	}

	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.Int("records", summary.Records),
		slog.Int("sources", len(summary.Sources)))
	return summary, nil
}

// CacheStats returns dataset cache statistics
func (s *ReportService) CacheStats() ingest.CacheStats {
	return s.datasets.Stats()
}

// Ready reports whether a dataset is loaded, and the last load error if any
func (s *ReportService) Ready() (bool, string) {
	stats := s.datasets.Stats()
	return s.datasets.Current() != nil, stats.LastError
}

// ExportCSV writes the filtered transactions as CSV and returns how many
// were written
func (s *ReportService) ExportCSV(ctx context.Context, w io.Writer, filter domain.FilterState) (int, error) {
	records, err := s.Transactions(ctx, filter)
	if err != nil {
		return 0, err
	}
	if err := s.csv.WriteTransactions(w, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportXLSX writes the filtered transactions and report tables as a workbook
func (s *ReportService) ExportXLSX(ctx context.Context, w io.Writer, filter domain.FilterState) (int, error) {
	result, err := s.datasets.Get(ctx)
	if err != nil {
		return 0, err
	}
	records := analytics.Filter(result.Dataset, filter)
	agg := analytics.Aggregate(result.Dataset, filter)
	if err := s.workbook.Write(w, records, agg); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Export writes the export in format to w
func (s *ReportService) Export(ctx context.Context, w io.Writer, format string, filter domain.FilterState) (int, error) {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return s.ExportCSV(ctx, w, filter)
	case FormatXLSX:
		return s.ExportXLSX(ctx, w, filter)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ExportToFile writes the export in format to path through fm, returning the
// resolved path and the number of transactions written
func (s *ReportService) ExportToFile(ctx context.Context, fm *files.Manager, path, format string, filter domain.FilterState) (string, int, error) {
	var count int
	fullPath, err := exporter.ExportFile(fm, path, func(w io.Writer) error {
		n, err := s.Export(ctx, w, format, filter)
		count = n
		return err
	})
	if err != nil {
		return "", 0, err
	}

	s.logger.InfoContext(ctx, "export written",
		slog.String("path", fullPath),
		slog.String("format", format),
		slog.Int("records", count))
	return fullPath, count, nil
}

// ExportFileName returns the default file name for format
func ExportFileName(format string) string {
	if strings.EqualFold(format, FormatXLSX) {
		return exporter.WorkbookFileName
	}
	return exporter.TransactionsFileName
}
