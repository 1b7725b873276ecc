package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrRecordRejected  = errors.New("record rejected")
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrFetch           = errors.New("fetch failed")
	ErrConfig          = errors.New("invalid configuration")
)

// RecordRejectedError drops one raw record; the rest of its source continues.
type RecordRejectedError struct {
	Source string
	Field  string
	Reason string
}

func (e *RecordRejectedError) Error() string {
	return fmt.Sprintf("record rejected (source=%s field=%s): %s", e.Source, e.Field, e.Reason)
}

func (e *RecordRejectedError) Is(target error) bool { return target == ErrRecordRejected }

// FetchError drops one adapter's contribution to a run.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ConfigError is fatal: there is no safe default for a broken rule file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
