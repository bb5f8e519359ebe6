package config

import "fmt"

// ConfigurationError describes one violated invariant. Build reports all of them joined.
type ConfigurationError struct {
	Field  string
	Value  string // empty for secrets
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration %s=%q: %s", e.Field, e.Value, e.Reason)
}

// ConfigurationErrors unpacks a joined or wrapped error into its ConfigurationErrors.
func ConfigurationErrors(err error) []*ConfigurationError {
	switch e := err.(type) {
	case nil:
		return nil
	case *ConfigurationError:
		return []*ConfigurationError{e}
	case interface{ Unwrap() []error }:
		var out []*ConfigurationError
		for _, inner := range e.Unwrap() {
			out = append(out, ConfigurationErrors(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return ConfigurationErrors(e.Unwrap())
	}
	return nil
}
