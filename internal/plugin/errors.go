package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a malformed stage configuration.
	ErrConfiguration = errors.New("invalid plugin configuration")

	// ErrResolution marks a type identifier that could not be turned into an
	// instance.
	ErrResolution = errors.New("plugin resolution failed")
)

// ConfigError describes what is wrong with a stage configuration. Index is
// the offending array element, or -1 when the problem is the key itself.
type ConfigError struct {
	Key    string
	Index  int
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Key, e.Index, e.Reason)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// ResolutionError reports an unknown or non-constructible type.
type ResolutionError struct {
	Category Category
	Type     string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot create %s plugin of type '%s': %v", e.Category, e.Type, e.Err)
}

// Unwrap exposes both ErrResolution and the underlying cause.
func (e *ResolutionError) Unwrap() []error {
	return []error{ErrResolution, e.Err}
}
