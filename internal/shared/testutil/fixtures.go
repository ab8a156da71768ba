package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TransactionHeader is the header row of a point-of-sale export
var TransactionHeader = []string{"Date", "Item", "Quantity Sold", "Amount Inc Tax"}

// Row is one export row: date, item, quantity, amount
type Row [4]string

// TransactionCSV renders rows under the standard export header
func TransactionCSV(rows ...Row) string {
	return CSVWithHeader(TransactionHeader, rows...)
}

// CSVWithHeader renders rows under an arbitrary header
func CSVWithHeader(header []string, rows ...Row) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(header)
	for _, r := range rows {
		_ = w.Write(r[:])
	}
	w.Flush()
	return b.String()
}

// WriteFile writes content to dir/name and returns the full path
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// BerkhamstedJune and AylesburyJune are the two-source reference dataset:
// 50.00 and 90.00 of PT sessions in June.
var (
	BerkhamstedJune = TransactionCSV(Row{"01/06/2025", "PT Session", "1", "50.00"})
	AylesburyJune   = TransactionCSV(Row{"02/06/2025", "PT Session", "2", "90.00"})
)
