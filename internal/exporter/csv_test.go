package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revpulse/internal/files"
	"revpulse/pkg/contracts/domain"
)

func at(y int, m time.Month, d, hh, mm int) *time.Time {
	t := time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	return &t
}

func sampleRecords() []domain.CanonicalRecord {
	return []domain.CanonicalRecord{
		{
			Date:     at(2025, time.June, 1, 0, 0),
			Item:     "PT Session",
			Quantity: decimal.NewNullDecimal(decimal.NewFromInt(1)),
			Amount:   decimal.NewNullDecimal(decimal.RequireFromString("50.00")),
			Location: "Berkhamsted",
			Period:   "June",
		},
		{
			Date:     at(2025, time.June, 2, 14, 30),
			Item:     "Class Pass, 10x",
			Quantity: decimal.NewNullDecimal(decimal.NewFromInt(2)),
			Amount:   decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
			Location: "Aylesbury",
			Period:   "June",
		},
		{
			Item:     "Unknown item",
			Location: "Aylesbury",
		},
	}
}

func TestCSVWriter_WriteTransactions(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVWriter(Options{}).WriteTransactions(&buf, sampleRecords())
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Date", "Item", "Quantity Sold", "Amount Inc Tax", "location", "period"}, rows[0])
	assert.Equal(t, []string{"2025-06-01", "PT Session", "1", "50", "Berkhamsted", "June"}, rows[1])
	assert.Equal(t, []string{"2025-06-02 14:30:00", "Class Pass, 10x", "2", "12.5", "Aylesbury", "June"}, rows[2])
	assert.Equal(t, []string{"", "Unknown item", "", "", "Aylesbury", ""}, rows[3], "nulls render empty")
}

func TestCSVWriter_BOMPrefix(t *testing.T) {
	tests := []struct {
		name string
		bom  bool
	}{
		{"with bom", true},
		{"without bom", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVWriter(Options{BOMPrefix: tt.bom}).WriteTransactions(&buf, nil))

			assert.Equal(t, tt.bom, bytes.HasPrefix(buf.Bytes(), utf8BOM))
			content := strings.TrimPrefix(buf.String(), "\ufeff")
			assert.Equal(t, "Date,Item,Quantity Sold,Amount Inc Tax,location,period\n", content)
		})
	}
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	stream, err := NewCSVWriter(Options{}).NewStreamWriter(&buf)
	require.NoError(t, err)

	for _, rec := range sampleRecords() {
		require.NoError(t, stream.WriteRecord(rec))
	}
	assert.Equal(t, 3, stream.Count())
	require.NoError(t, stream.Close())

	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestCSVWriter_WriteError(t *testing.T) {
	err := NewCSVWriter(Options{BOMPrefix: true}).WriteTransactions(failingWriter{}, sampleRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	fm := files.NewManager(dir)
	w := NewCSVWriter(Options{})

	path, err := ExportFile(fm, filepath.Join("exports", TransactionsFileName), func(out io.Writer) error {
		return w.WriteTransactions(out, sampleRecords()[:1])
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", TransactionsFileName), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "2025-06-01,PT Session,1,50,Berkhamsted,June")

	// A failed export leaves the previous file in place.
	_, err = ExportFile(fm, path, func(out io.Writer) error {
		_, _ = out.Write([]byte("partial"))
		return errors.New("aggregation cancelled")
	})
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, after)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", formatDate(nil))
	assert.Equal(t, "2025-07-31", formatDate(at(2025, time.July, 31, 0, 0)))
	assert.Equal(t, "2025-07-31 09:05:00", formatDate(at(2025, time.July, 31, 9, 5)))
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "", formatDecimal(decimal.NullDecimal{}))
	assert.Equal(t, "-3.75", formatDecimal(decimal.NewNullDecimal(decimal.RequireFromString("-3.750"))))
	assert.Equal(t, "1200", formatDecimal(decimal.NewNullDecimal(decimal.RequireFromString("1.2e3"))))
}
