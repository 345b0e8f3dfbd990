package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrMissingParameter = errors.New("missing query parameter")
	ErrInvalidParameter = errors.New("invalid query parameter")
)
