package ingest

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"revpulse/internal/analytics"
	"revpulse/internal/dataprocessing"
	"revpulse/internal/infrastructure"
	"revpulse/internal/sources"
)

// LoadResult is a built dataset together with how each source fared
type LoadResult struct {
	Dataset     *analytics.Dataset
	Sources     []SourceReport
	Stats       dataprocessing.CoercionStats
	Fingerprint string
	LoadedAt    time.Time
}

// Empty reports whether the load produced no usable records
func (r *LoadResult) Empty() bool {
	return r == nil || r.Dataset.Len() == 0
}

// Loader runs discovery and the per-source pipeline
type Loader struct {
	locator sources.Locator
	logger  *slog.Logger
	metrics *infrastructure.Metrics
	tracer  trace.Tracer
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithLogger sets the loader's logger
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records ingest metrics on m
func WithMetrics(m *infrastructure.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// WithTracer records load spans on tracer
func WithTracer(tracer trace.Tracer) LoaderOption {
	return func(l *Loader) {
		if tracer != nil {
			l.tracer = tracer
		}
	}
}

// NewLoader creates a loader reading from locator
func NewLoader(locator sources.Locator, opts ...LoaderOption) *Loader {
	l := &Loader{
		locator: locator,
		logger:  slog.Default(),
		tracer:  tracenoop.NewTracerProvider().Tracer("revpulse/ingest"),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(slog.String("component", "loader"))
	return l
}

// Discover returns the current source set
func (l *Loader) Discover(ctx context.Context) ([]sources.RawSource, error) {
	ctx, span := l.tracer.Start(ctx, "ingest.discover")
	defer span.End()

	srcs, err := l.locator.Discover(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("sources.count", len(srcs)))
	return srcs, nil
}

// Load discovers the sources and builds a dataset from them
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	srcs, err := l.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return l.Build(ctx, srcs)
}

// Build processes srcs in order and merges the usable ones into a dataset.
// Processing stops at the first fatal outcome, whose error is returned; no
// dataset is produced in that case.
func (l *Loader) Build(ctx context.Context, srcs []sources.RawSource) (*LoadResult, error) {
	ctx, span := l.tracer.Start(ctx, "ingest.build",
		trace.WithAttributes(attribute.Int("sources.count", len(srcs))))
	defer span.End()

	outcomes := make([]Outcome, 0, len(srcs))
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		o := Process(src)
		outcomes = append(outcomes, o)
		l.metrics.RecordSourceOutcome(ctx, string(o.Kind))

		switch o.Kind {
		case OutcomeFatal:
			l.logger.ErrorContext(ctx, "source failed, aborting load",
				slog.String("source", o.Source.Name),
				slog.String("error", o.Err.Error()))
		case OutcomeSkippable:
			l.logger.WarnContext(ctx, "skipping source",
				slog.String("source", o.Source.Name),
				slog.String("error", o.Err.Error()))
		default:
			l.metrics.RecordNormalization(ctx, o.Stats.Rows, o.Stats.Nulls())
			l.logger.DebugContext(ctx, "source normalized",
				slog.String("source", o.Source.Name),
				slog.Int("records", o.Stats.Rows),
				slog.Int("null_dates", o.Stats.NullDates),
				slog.Int("null_amounts", o.Stats.NullAmounts))
		}

		if o.Kind == OutcomeFatal {
			break
		}
	}

	batches, err := Reduce(outcomes)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	result := &LoadResult{
		Dataset:     analytics.Build(batches...),
		Sources:     make([]SourceReport, 0, len(outcomes)),
		Fingerprint: Fingerprint(srcs),
		LoadedAt:    time.Now().UTC(),
	}
	for _, o := range outcomes {
		result.Sources = append(result.Sources, o.Report())
		result.Stats.Add(o.Stats)
	}
	l.metrics.RecordDatasetBuild(ctx)

	span.SetAttributes(attribute.Int("records.count", result.Dataset.Len()))
	l.logger.InfoContext(ctx, "dataset built",
		slog.Int("sources", len(srcs)),
		slog.Int("records", result.Dataset.Len()),
		slog.String("fingerprint", result.Fingerprint[:12]))

	if result.Empty() {
		l.logger.WarnContext(ctx, "no usable records in any source")
	}
	return result, nil
}
