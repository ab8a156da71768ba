package dataprocessing

import "strings"

// LogicalColumn names one of the required export columns
type LogicalColumn string

const (
	ColumnDate     LogicalColumn = "Date"
	ColumnItem     LogicalColumn = "Item"
	ColumnQuantity LogicalColumn = "Quantity Sold"
	ColumnAmount   LogicalColumn = "Amount Inc Tax"
)

// RequiredColumns lists the logical columns in resolution order
var RequiredColumns = []LogicalColumn{ColumnDate, ColumnItem, ColumnQuantity, ColumnAmount}

// ResolvedSchema holds the header positions of the required columns for one
// source. It is computed once and used for every row of that source.
type ResolvedSchema struct {
	DateCol   int
	ItemCol   int
	QtyCol    int
	AmountCol int
}

// ResolveSchema locates the required columns among headers, comparing
// trimmed names case-insensitively. The first matching header wins. When a
// column cannot be found it is returned with ok=false.
func ResolveSchema(headers []string) (schema ResolvedSchema, missing LogicalColumn, ok bool) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	positions := make([]int, len(RequiredColumns))
	for i, col := range RequiredColumns {
		pos, found := index[strings.ToLower(string(col))]
		if !found {
			return ResolvedSchema{}, col, false
		}
		positions[i] = pos
	}

	return ResolvedSchema{
		DateCol:   positions[0],
		ItemCol:   positions[1],
		QtyCol:    positions[2],
		AmountCol: positions[3],
	}, "", true
}
