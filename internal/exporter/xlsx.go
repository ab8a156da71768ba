package exporter

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"revpulse/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetTransactions = "Transactions"
	SheetLocations    = "Revenue by Location"
	SheetMonthly      = "Monthly Revenue"
	SheetSessions     = "Sessions"
)

// WorkbookFileName is the default name of the workbook export
const WorkbookFileName = "revenue_report.xlsx"

// WorkbookWriter renders transactions and report tables as XLSX
type WorkbookWriter struct{}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{}
}

// Write renders records and result into a workbook on out
func (w *WorkbookWriter) Write(out io.Writer, records []domain.CanonicalRecord, result domain.AggregationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetLocations, SheetMonthly, SheetSessions} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetTransactions, transactionRows(records)},
		{SheetLocations, locationRows(result.RevenueByLocation)},
		{SheetMonthly, monthlyRows(result.RevenueByPeriodLocation)},
		{SheetSessions, sessionRows(result.SessionsPivot)},
	}
	for _, sheet := range sheets {
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet.name, 1, 1, bold); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet.name, err)
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func transactionRows(records []domain.CanonicalRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records)+1)
	rows = append(rows, headerRow(TransactionsHeader...))
	for _, rec := range records {
		rows = append(rows, []interface{}{
			formatDate(rec.Date),
			rec.Item,
			cellNumber(rec.Quantity),
			cellNumber(rec.Amount),
			rec.Location,
			rec.Period,
		})
	}
	return rows
}

func locationRows(revenue []domain.LocationRevenue) [][]interface{} {
	rows := [][]interface{}{headerRow("Location", "Revenue")}
	for _, r := range revenue {
		rows = append(rows, []interface{}{r.Location, r.Revenue.InexactFloat64()})
	}
	return rows
}

func monthlyRows(revenue []domain.PeriodLocationRevenue) [][]interface{} {
	rows := [][]interface{}{headerRow("Period", "Location", "Revenue")}
	for _, r := range revenue {
		rows = append(rows, []interface{}{r.Period, r.Location, r.Revenue.InexactFloat64()})
	}
	return rows
}

func sessionRows(pivot domain.SessionsPivot) [][]interface{} {
	header := headerRow(append([]string{"Item"}, pivot.Periods...)...)
	rows := [][]interface{}{header}
	for i, item := range pivot.Items {
		row := make([]interface{}, 0, len(pivot.Periods)+1)
		row = append(row, item)
		for _, v := range pivot.Sessions[i] {
			row = append(row, v.InexactFloat64())
		}
		rows = append(rows, row)
	}
	return rows
}

func headerRow(names ...string) []interface{} {
	row := make([]interface{}, len(names))
	for i, n := range names {
		row[i] = n
	}
	return row
}

// cellNumber returns a numeric cell value, or nil for an empty cell
func cellNumber(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}
