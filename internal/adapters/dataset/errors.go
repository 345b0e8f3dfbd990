package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrMalformed         = errors.New("malformed dataset")
	ErrSessionNotFound   = errors.New("session not found")
	ErrMissingFields     = errors.New("session is missing required fields")
	ErrLengthMismatch    = errors.New("session columns differ in length")
)
