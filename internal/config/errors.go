package config

import "fmt"

// MissingRoleError is returned when no environment role was supplied.
type MissingRoleError struct {
	Variable string
	Cause    error
}

func (e *MissingRoleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("environment role is not set (%s): %v", e.Variable, e.Cause)
	}
	return fmt.Sprintf("environment role is not set (%s)", e.Variable)
}

func (e *MissingRoleError) Unwrap() error {
	return e.Cause
}

// ConfigLoadError reports a document that could not be located, read, or parsed.
type ConfigLoadError struct {
	Source string
	Cause  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("load config %q: %v", e.Source, e.Cause)
}

func (e *ConfigLoadError) Unwrap() error {
	return e.Cause
}

// KeyNotFoundError is returned by accessors when neither document defines the key.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("config key %q not found", e.Key)
}

// TypeMismatchError is returned by accessors when the stored value has a different type.
type TypeMismatchError struct {
	Key  string
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("config key %q: expected %s, got %s", e.Key, e.Want, e.Got)
}
