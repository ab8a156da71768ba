// Package dataprocessing turns raw transaction exports into canonical records.
//
// Processing happens in two steps per source:
//
//  1. Parse reads the delimited text or workbook, trims the header names and
//     resolves the four required logical columns (Date, Item, Quantity Sold,
//     Amount Inc Tax) case-insensitively into a ResolvedSchema. Missing columns
//     and malformed input are reported as a *ParseFailure; the caller decides
//     whether that halts the load or skips the source.
//  2. Normalize coerces every row into a domain.CanonicalRecord. Coercion
//     never fails: unparseable dates and numbers become null and are counted
//     in CoercionStats. Row count in equals row count out.
//
// Usage:
//
//	table, err := dataprocessing.Parse(src)
//	if err != nil {
//	    var pf *dataprocessing.ParseFailure
//	    errors.As(err, &pf)
//	    ...
//	}
//	records, stats := dataprocessing.Normalize(table, src.Location, src.Period)
package dataprocessing
