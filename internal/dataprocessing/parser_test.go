package dataprocessing

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "revpulse/internal/errors"
	"revpulse/internal/shared/testutil"
	"revpulse/internal/sources"
)

func csvSource(text string) sources.RawSource {
	return sources.RawSource{
		ID:       "/data/berko.jun.25.csv",
		Strategy: sources.StrategyScan,
		Format:   sources.FormatCSV,
		Data:     []byte(text),
	}
}

func TestParse_CSV(t *testing.T) {
	text := "Receipt,Date,Item,Quantity Sold,Amount Inc Tax,Staff\n" +
		"R1,01/06/2025,PT Session,1,50.00,Sam\n" +
		"R2,02/06/2025,Class Pass,2\n"

	table, err := Parse(csvSource(text))
	require.NoError(t, err)

	assert.Equal(t, "berko.jun.25.csv", table.Source)
	assert.Equal(t, ResolvedSchema{DateCol: 1, ItemCol: 2, QtyCol: 3, AmountCol: 4}, table.Schema)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, Row{Line: 2, Date: "01/06/2025", Item: "PT Session", Quantity: "1", Amount: "50.00"}, table.Rows[0])
	assert.Equal(t, "", table.Rows[1].Amount, "short rows are padded")
}

func TestParse_HeaderCaseInsensitivity(t *testing.T) {
	for _, header := range []string{"date", "DATE", " Date "} {
		t.Run(header, func(t *testing.T) {
			text := testutil.CSVWithHeader(
				[]string{header, " ITEM", "quantity sold ", "Amount Inc Tax"},
				testutil.Row{"01/06/2025", "PT Session", "1", "50"},
			)
			table, err := Parse(csvSource(text))
			require.NoError(t, err)
			assert.Equal(t, 0, table.Schema.DateCol)
			assert.Equal(t, strings.TrimSpace(header), table.Headers[0])
			assert.Equal(t, "ITEM", table.Headers[1])
		})
	}
}

func TestParse_BOM(t *testing.T) {
	text := "\ufeff" + testutil.BerkhamstedJune
	table, err := Parse(csvSource(text))
	require.NoError(t, err)
	assert.Equal(t, "Date", table.Headers[0])
	assert.Len(t, table.Rows, 1)
}

func TestParse_SchemaFailure(t *testing.T) {
	text := "Date,Item,Qty,Amount Inc Tax\n01/06/2025,PT Session,1,50\n"

	_, err := Parse(csvSource(text))
	require.Error(t, err)

	var pf *ParseFailure
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, FailureSchema, pf.Kind)
	assert.Equal(t, ColumnQuantity, pf.Column)
	assert.Equal(t, []string{"Date", "Item", "Qty", "Amount Inc Tax"}, pf.Headers)
	assert.Contains(t, err.Error(), `"Quantity Sold"`)
	assert.Contains(t, err.Error(), "berko.jun.25.csv")

	appErr := pf.AppError()
	assert.Equal(t, apperrors.ErrTypeSchema, appErr.Type)
	assert.Equal(t, "berko.jun.25.csv", appErr.Context["source"])
}

func TestParse_StrayQuotes(t *testing.T) {
	text := "Date,Item,Quantity Sold,Amount Inc Tax\n" +
		"01/06/2025,12\" Foam Roller,1,15.00\n" +
		"02/06/2025,\"Mat, \"\"Pro\"\"\",2,30.00\n"

	src := csvSource(text)
	src.Strategy = sources.StrategyStatic

	table, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, `12" Foam Roller`, table.Rows[0].Item)
	assert.Equal(t, "15.00", table.Rows[0].Amount)
	assert.Equal(t, `Mat, "Pro"`, table.Rows[1].Item)
}

func TestParse_SyntaxFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"row wider than header", "Date,Item,Quantity Sold,Amount Inc Tax\n01/06/2025,PT,1,50,extra\n"},
		{"empty input", ""},
		{"blank lines only", "\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(csvSource(tt.text))
			require.Error(t, err)

			var pf *ParseFailure
			require.True(t, errors.As(err, &pf))
			assert.Equal(t, FailureSyntax, pf.Kind)
			assert.Equal(t, apperrors.ErrTypeSyntax, pf.AppError().Type)
		})
	}
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Item", "Quantity Sold", "Amount Inc Tax"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"01/06/2025", "PT Session", "1", "50.00"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"02/06/2025", "Class Pass", "2", "18.00"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	table, err := Parse(sources.RawSource{
		ID:       "ayles.jun.xlsx",
		Strategy: sources.StrategyScan,
		Format:   sources.FormatXLSX,
		Data:     buf.Bytes(),
	})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Class Pass", table.Rows[1].Item)
	assert.Equal(t, "18.00", table.Rows[1].Amount)
}

func TestParse_XLSXCorrupt(t *testing.T) {
	_, err := Parse(sources.RawSource{ID: "bad.xlsx", Format: sources.FormatXLSX, Data: []byte("not a zip")})

	var pf *ParseFailure
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, FailureSyntax, pf.Kind)
}

func TestResolveSchema_FirstMatchWins(t *testing.T) {
	schema, _, ok := ResolveSchema([]string{"Item", "Date", "date", "Quantity Sold", "Amount Inc Tax"})
	require.True(t, ok)
	assert.Equal(t, 1, schema.DateCol)
	assert.Equal(t, 0, schema.ItemCol)
}
