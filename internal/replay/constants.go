package replay

import "errors"

// HTTP status code constants.
const (
	StatusOK = 200
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrNotReady is returned when the service has no loaded state.
var ErrNotReady = errors.New("service is not ready")
