package engine

import (
	"errors"
	"fmt"
)

// RunErrorCode categorizes engine run failures.
type RunErrorCode string

const (
	// ErrCodeConfigMissing indicates required configuration (cross-section
	// library path, engine binary) is absent or unusable. Detected before
	// the engine process starts.
	ErrCodeConfigMissing RunErrorCode = "CONFIG_MISSING"

	// ErrCodeEngineStart indicates the engine process could not be started.
	ErrCodeEngineStart RunErrorCode = "ENGINE_START"

	// ErrCodeEngineExit indicates the engine process exited with failure.
	ErrCodeEngineExit RunErrorCode = "ENGINE_EXIT"

	// ErrCodeNoTally indicates the run produced no readable tally summary.
	ErrCodeNoTally RunErrorCode = "NO_TALLY"

	// ErrCodeParse indicates the tally summary could not be parsed.
	ErrCodeParse RunErrorCode = "PARSE"
)

// RunError is an error raised while driving the external engine.
type RunError struct {
	Code    RunErrorCode
	Message string
	RunID   string
	Err     error
}

func (e *RunError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RunError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is a missing-configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeConfigMissing
	}
	return false
}

func newRunError(code RunErrorCode, runID, message string, err error) *RunError {
	return &RunError{Code: code, Message: message, RunID: runID, Err: err}
}
