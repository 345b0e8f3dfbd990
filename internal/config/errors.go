package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

func invalid(key, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, key, reason)
}
