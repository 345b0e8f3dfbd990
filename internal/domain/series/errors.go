package series

import "errors"

// Sentinel kinds for series errors.
var (
	ErrEmptySeries     = errors.New("series is empty")
	ErrUnordered       = errors.New("series is not ordered by timestamp")
	ErrInvalidOrigin   = errors.New("invalid origin timestamp")
	ErrInvalidSample   = errors.New("invalid sample")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNonFiniteTime   = errors.New("time offset is not finite")
)
