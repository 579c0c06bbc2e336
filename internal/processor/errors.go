package processor

import (
	"errors"
	"fmt"
)

// ErrInvalidParam is returned for a batch size or thread count below 1.
var ErrInvalidParam = errors.New("invalid parameter")

// ConfigError is a fatal construction failure: the engine or model could not be loaded,
// or a construction-time setting is invalid.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "processor configuration: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ProcessingError reports an engine failure on the document at Index.
type ProcessingError struct {
	Index int
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing document %d: %v", e.Index, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// InvalidRangeError is returned for an n-gram range with Min < 1 or Min > Max.
type InvalidRangeError struct {
	Min int
	Max int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid n-gram range (%d, %d): need 1 <= min <= max", e.Min, e.Max)
}
