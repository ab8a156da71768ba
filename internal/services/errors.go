package services

import "errors"

// Report service errors
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
