package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "revpulse/internal/errors"
	"revpulse/internal/sources"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FailureKind classifies a ParseFailure
type FailureKind string

const (
	FailureSchema FailureKind = "schema"
	FailureSyntax FailureKind = "syntax"
)

// ParseFailure reports a source that could not be turned into a table
type ParseFailure struct {
	Source string
	Kind   FailureKind
	// Column and Headers are set for schema failures
	Column  LogicalColumn
	Headers []string
	Cause   error
}

func (f *ParseFailure) Error() string {
	if f.Kind == FailureSchema {
		return fmt.Sprintf("source %s: required column %q not found (headers: %s)",
			f.Source, f.Column, strings.Join(f.Headers, ", "))
	}
	return fmt.Sprintf("source %s: malformed tabular data: %v", f.Source, f.Cause)
}

func (f *ParseFailure) Unwrap() error {
	return f.Cause
}

// AppError converts the failure into the application error taxonomy
func (f *ParseFailure) AppError() *apperrors.AppError {
	var appErr *apperrors.AppError
	if f.Kind == FailureSchema {
		appErr = apperrors.NewSchemaError(f.Error(), f.Cause).
			WithContext("column", string(f.Column)).
			WithContext("headers", f.Headers)
	} else {
		appErr = apperrors.NewSyntaxError(f.Error(), f.Cause)
	}
	return appErr.WithContext("source", f.Source)
}

// Row holds the raw text of the required columns for one data row. Line is
// the 1-based row number in the source, header included.
type Row struct {
	Line     int
	Date     string
	Item     string
	Quantity string
	Amount   string
}

// ParsedTable is the validated content of one source
type ParsedTable struct {
	Source  string
	Headers []string
	Schema  ResolvedSchema
	Rows    []Row
}

// Parse reads src into a ParsedTable. Errors are always *ParseFailure.
func Parse(src sources.RawSource) (*ParsedTable, error) {
	name := src.Name()

	var (
		records [][]string
		err     error
	)
	switch src.Format {
	case sources.FormatXLSX:
		records, err = readWorkbook(src.Data)
	default:
		records, err = readDelimited(src.Data)
	}
	if err != nil {
		return nil, &ParseFailure{Source: name, Kind: FailureSyntax, Cause: err}
	}
	if len(records) == 0 {
		return nil, &ParseFailure{Source: name, Kind: FailureSyntax, Cause: errors.New("no header row")}
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	schema, missing, ok := ResolveSchema(headers)
	if !ok {
		return nil, &ParseFailure{Source: name, Kind: FailureSchema, Column: missing, Headers: headers}
	}

	table := &ParsedTable{
		Source:  name,
		Headers: headers,
		Schema:  schema,
		Rows:    make([]Row, 0, len(records)-1),
	}
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) > len(headers) {
			return nil, &ParseFailure{
				Source: name,
				Kind:   FailureSyntax,
				Cause:  fmt.Errorf("row %d has %d fields, header has %d", line, len(rec), len(headers)),
			}
		}
		table.Rows = append(table.Rows, Row{
			Line:     line,
			Date:     cell(rec, schema.DateCol),
			Item:     cell(rec, schema.ItemCol),
			Quantity: cell(rec, schema.QtyCol),
			Amount:   cell(rec, schema.AmountCol),
		})
	}

	return table, nil
}

// cell pads short rows with empty values
func cell(rec []string, idx int) string {
	if idx < len(rec) {
		return rec[idx]
	}
	return ""
}

func readDelimited(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// readWorkbook returns the formatted cell values of the first sheet.
// Rows with no cells at all are skipped, matching blank lines in CSV.
func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if len(records) == 0 {
			row[0] = strings.TrimPrefix(row[0], string(utf8BOM))
		}
		records = append(records, row)
	}
	return records, nil
}
