package logging

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyInitialized is returned when a pipeline has already been installed.
	ErrAlreadyInitialized = errors.New("logging pipeline already installed")
	// ErrUnknownLevel is the cause of a LevelParseError for unrecognized input.
	ErrUnknownLevel = errors.New("unknown log level")
)

// LevelParseError reports a level string that does not name a severity.
type LevelParseError struct {
	Raw   string
	Cause error
}

func (e *LevelParseError) Error() string {
	return fmt.Sprintf("parse log level %q: %v", e.Raw, e.Cause)
}

func (e *LevelParseError) Unwrap() error {
	return e.Cause
}

// PipelineBuildError wraps any failure to assemble or install a pipeline.
type PipelineBuildError struct {
	Cause error
}

func (e *PipelineBuildError) Error() string {
	return fmt.Sprintf("build logging pipeline: %v", e.Cause)
}

func (e *PipelineBuildError) Unwrap() error {
	return e.Cause
}
