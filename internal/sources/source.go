// Package sources discovers the raw transaction exports that feed a load and
// labels each with its candidate location and period.
package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Strategy identifies how a source was discovered. It decides whether a
// parse failure halts the load or only skips the source.
type Strategy string

const (
	StrategyStatic Strategy = "static"
	StrategyScan   Strategy = "scan"
)

// Format is the tabular encoding of a source
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// RawSource is one unparsed input. Location and Period are candidate labels;
// empty means unresolved.
type RawSource struct {
	ID       string
	Strategy Strategy
	Location string
	Period   string
	Format   Format
	Data     []byte
	// ReadErr is set when a scanned file could not be read. Data is nil then.
	ReadErr error
}

// Name returns a human-readable label for messages: the location and period
// for static sources, the file name for scanned ones.
func (s RawSource) Name() string {
	if s.Strategy == StrategyStatic {
		return fmt.Sprintf("%s (%s)", s.Location, s.Period)
	}
	return filepath.Base(s.ID)
}

// Locator yields the raw sources of one load in discovery order
type Locator interface {
	Discover(ctx context.Context) ([]RawSource, error)
}

// FormatForPath picks the source format from a file extension. Anything
// that is not a workbook is read as delimited text.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}
