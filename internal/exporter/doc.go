// Package exporter writes filtered transactions and report tables to disk
// or to any io.Writer.
//
// CSVWriter renders transactions in the filtered_transactions.csv layout:
// the four source columns followed by location and period, ISO dates, plain
// decimal amounts and empty cells for nulls. An optional UTF-8 BOM helps
// Excel detect the encoding.
//
// WorkbookWriter renders the same transactions plus the aggregated revenue
// and session tables as an XLSX workbook.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(exporter.Options{BOMPrefix: true})
//	if err := w.WriteTransactions(out, records); err != nil {
//		return err
//	}
//
//	path, err := exporter.ExportFile(fm, "exports/filtered_transactions.csv", func(out io.Writer) error {
//		return w.WriteTransactions(out, records)
//	})
package exporter
