// Package ingest runs the per-source pipeline (parse, normalize), decides
// which failures halt a load, and caches the resulting dataset by content.
package ingest

import (
	"errors"

	"revpulse/internal/dataprocessing"
	apperrors "revpulse/internal/errors"
	"revpulse/internal/sources"
	"revpulse/pkg/contracts/domain"
)

// OutcomeKind is the result class of processing one source
type OutcomeKind string

const (
	OutcomeOK        OutcomeKind = "ok"
	OutcomeSkippable OutcomeKind = "skipped"
	OutcomeFatal     OutcomeKind = "fatal"
)

// SourceInfo identifies a source without holding its bytes
type SourceInfo struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Strategy sources.Strategy `json:"strategy"`
	Format   sources.Format   `json:"format"`
	Location string           `json:"location,omitempty"`
	Period   string           `json:"period,omitempty"`
}

func infoOf(src sources.RawSource) SourceInfo {
	return SourceInfo{
		ID:       src.ID,
		Name:     src.Name(),
		Strategy: src.Strategy,
		Format:   src.Format,
		Location: src.Location,
		Period:   src.Period,
	}
}

// Outcome is the result of processing one source
type Outcome struct {
	Source  SourceInfo
	Kind    OutcomeKind
	Records []domain.CanonicalRecord
	Stats   dataprocessing.CoercionStats
	Err     error
}

// SourceReport summarises an outcome for display
type SourceReport struct {
	SourceInfo
	Status  OutcomeKind                  `json:"status"`
	Records int                          `json:"records"`
	Stats   dataprocessing.CoercionStats `json:"stats"`
	Error   string                       `json:"error,omitempty"`
}

// Report converts o into its display form
func (o Outcome) Report() SourceReport {
	r := SourceReport{
		SourceInfo: o.Source,
		Status:     o.Kind,
		Records:    len(o.Records),
		Stats:      o.Stats,
	}
	if o.Err != nil {
		r.Error = o.Err.Error()
	}
	return r
}

// Process parses and normalizes one source. Failures of a static source are
// fatal; failures of a scanned source are skippable.
func Process(src sources.RawSource) Outcome {
	out := Outcome{Source: infoOf(src)}

	if src.ReadErr != nil {
		out.Kind = failureKind(src.Strategy)
		out.Err = src.ReadErr
		return out
	}

	table, err := dataprocessing.Parse(src)
	if err != nil {
		out.Kind = failureKind(src.Strategy)
		var pf *dataprocessing.ParseFailure
		if errors.As(err, &pf) {
			out.Err = pf.AppError()
		} else {
			out.Err = apperrors.NewSyntaxError(err.Error(), err)
		}
		return out
	}

	out.Kind = OutcomeOK
	out.Records, out.Stats = dataprocessing.Normalize(table, src.Location, src.Period)
	return out
}

func failureKind(s sources.Strategy) OutcomeKind {
	if s == sources.StrategyStatic {
		return OutcomeFatal
	}
	return OutcomeSkippable
}

// Reduce returns the record batches of the ok outcomes in order, or the
// error of the first fatal outcome. Skippable outcomes are dropped.
func Reduce(outcomes []Outcome) ([][]domain.CanonicalRecord, error) {
	batches := make([][]domain.CanonicalRecord, 0, len(outcomes))
	for _, o := range outcomes {
		switch o.Kind {
		case OutcomeFatal:
			return nil, o.Err
		case OutcomeOK:
			batches = append(batches, o.Records)
		}
	}
	return batches, nil
}
