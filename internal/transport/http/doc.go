// Package http implements the REST surface of the revenue report.
//
// Handlers stay thin: they parse and validate the request, call the report
// service, and render either the success envelope
//
//	{"status":"success","data":...}
//
// or an RFC 7807 problem through errors.ErrorHandler.
//
// # Filters
//
// GET endpoints read the filter from repeatable query parameters:
//
//	/api/report?location=Aylesbury&location=Berkhamsted&period=June
//
// A parameter that is absent leaves its dimension unrestricted. A parameter
// that is present with no non-blank value (location=) restricts the
// dimension to nothing. POST /api/report accepts the same filter as JSON,
// where null means unrestricted and [] means nothing.
package http
