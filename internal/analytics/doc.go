// Package analytics merges normalized record batches into an immutable
// Dataset and computes filtered revenue and session aggregates over it.
//
// Every output is deterministic: groupings are collected into maps but always
// emitted in sorted order (locations and items lexically, periods in
// calendar order with unknown labels last).
package analytics
