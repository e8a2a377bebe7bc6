package emspt

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProfile = errors.New("invalid profile")
	ErrConfigNotFound = errors.New("config not found")
)

// InvalidProfileError reports a profile field outside its enumeration.
type InvalidProfileError struct {
	Field string
	Value string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile: unknown %s %q", e.Field, e.Value)
}

func (e *InvalidProfileError) Is(target error) bool { return target == ErrInvalidProfile }

// ConfigNotFoundError reports a configuration artifact that is missing for
// the resolved profile.
type ConfigNotFoundError struct {
	Artifact string // keys, lie_correction, norms, sten_table
	Key      string // form or profile the lookup used
	Err      error
}

func (e *ConfigNotFoundError) Error() string {
	msg := fmt.Sprintf("config not found: %s for %s", e.Artifact, e.Key)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigNotFoundError) Is(target error) bool { return target == ErrConfigNotFound }
func (e *ConfigNotFoundError) Unwrap() error        { return e.Err }

// MalformedConfigError is an authoring defect found while loading
// configuration. It matches ErrConfigNotFound so callers treat it the same
// way: the request fails with no partial result.
type MalformedConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedConfigError) Error() string {
	msg := fmt.Sprintf("malformed config %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedConfigError) Is(target error) bool { return target == ErrConfigNotFound }
func (e *MalformedConfigError) Unwrap() error        { return e.Err }
