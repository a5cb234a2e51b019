package sanitizer

import (
	"errors"
	"fmt"
)

var errUnknownHash = errors.New("unknown hash algorithm")

// ConfigError reports an invalid Sanitizer setting detected at construction.
type ConfigError struct {
	// Field names the rejected setting, e.g. "pattern" or "hash".
	Field string
	// Value is the rejected input as supplied by the caller.
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sanitizer: invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
