package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"revpulse/internal/files"
	"revpulse/pkg/contracts/domain"
)

// TransactionsFileName is the default name of the filtered transaction export
const TransactionsFileName = "filtered_transactions.csv"

// TransactionsHeader is the header row of the transaction export
var TransactionsHeader = []string{"Date", "Item", "Quantity Sold", "Amount Inc Tax", "location", "period"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures export rendering
type Options struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	opts Options
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(opts Options) *CSVWriter {
	return &CSVWriter{opts: opts}
}

// WriteTransactions writes records under TransactionsHeader
func (w *CSVWriter) WriteTransactions(out io.Writer, records []domain.CanonicalRecord) error {
	stream, err := w.NewStreamWriter(out)
	if err != nil {
		return err
	}
	for i, rec := range records {
		if err := stream.WriteRecord(rec); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Close()
}

// StreamWriter writes transactions one at a time
type StreamWriter struct {
	writer *csv.Writer
	count  int
}

// NewStreamWriter writes the optional BOM and the header row to out
func (w *CSVWriter) NewStreamWriter(out io.Writer) (*StreamWriter, error) {
	if w.opts.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(TransactionsHeader); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single transaction to the stream
func (s *StreamWriter) WriteRecord(rec domain.CanonicalRecord) error {
	s.count++
	return s.writer.Write(TransactionRow(rec))
}

// Count returns the number of transactions written so far
func (s *StreamWriter) Count() int {
	return s.count
}

// Close flushes buffered rows
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}

// TransactionRow renders one record in TransactionsHeader order
func TransactionRow(rec domain.CanonicalRecord) []string {
	return []string{
		formatDate(rec.Date),
		rec.Item,
		formatDecimal(rec.Quantity),
		formatDecimal(rec.Amount),
		rec.Location,
		rec.Period,
	}
}

// ExportFile writes through write into path via fm, replacing any previous
// file only once write succeeds. It returns the resolved path.
func ExportFile(fm *files.Manager, path string, write func(io.Writer) error) (string, error) {
	fullPath, err := fm.WriteFileAtomic(path, write)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", path, err)
	}
	return fullPath, nil
}
