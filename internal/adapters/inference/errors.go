package inference

import "errors"

// Sentinel error kinds for inference backends.
var (
	ErrInvalidManifest = errors.New("invalid model manifest")
	ErrUnknownBackend  = errors.New("unknown inference backend")
	ErrLayerShape      = errors.New("layer dimensions do not chain")
	ErrInputSize       = errors.New("input does not match the first layer")
	ErrRemoteStatus    = errors.New("remote model returned an error status")
	ErrRemoteResponse  = errors.New("remote model returned an unusable response")
)
