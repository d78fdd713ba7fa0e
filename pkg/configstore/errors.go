// Package configstore provides standardized error types for configuration access.
package configstore

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationUnavailable indicates the configuration store could not
	// be reached. Callers see the error directly; there is no built-in retry
	// and no silent fallback to a stale cache entry.
	ErrConfigurationUnavailable = errors.New("configuration store unavailable")

	// ErrConfigurationInvalid indicates a structurally broken configuration
	// document, such as a dangling question reference or a missing initial
	// question. Fatal to the current operation.
	ErrConfigurationInvalid = errors.New("configuration invalid")
)

// ConfigError wraps configuration errors with the operation and kind involved.
type ConfigError struct {
	Op   string // Operation being performed (e.g., "Fetch", "Decode")
	Kind Kind   // Configuration kind if applicable
	Err  error  // Underlying error
}

func (e *ConfigError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s failed for configuration kind %s: %v", e.Op, e.Kind, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for configuration errors.
func (e *ConfigError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewConfigError creates a new configuration error with context.
func NewConfigError(op string, kind Kind, err error) *ConfigError {
	return &ConfigError{Op: op, Kind: kind, Err: err}
}

// IsConfigurationUnavailable checks if an error indicates an unreachable store.
func IsConfigurationUnavailable(err error) bool {
	return errors.Is(err, ErrConfigurationUnavailable)
}

// IsConfigurationInvalid checks if an error indicates a broken document.
func IsConfigurationInvalid(err error) bool {
	return errors.Is(err, ErrConfigurationInvalid)
}
