package nlp

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotFound is returned by Load for an unknown model name.
	ErrModelNotFound = errors.New("nlp: model not found")
	// ErrUnknownStage is returned by Load when a disabled stage name is not part of the model.
	ErrUnknownStage = errors.New("nlp: unknown pipeline stage")
	// ErrStageDisabled is returned when an operation needs a stage that was disabled at load time.
	ErrStageDisabled = errors.New("nlp: pipeline stage disabled")
	// ErrInvalidEncoding is returned for text that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("nlp: text is not valid UTF-8")
)

// DocError reports a failure on one document of a batch run.
type DocError struct {
	Index int
	Err   error
}

func (e *DocError) Error() string {
	return fmt.Sprintf("nlp: document %d: %v", e.Index, e.Err)
}

func (e *DocError) Unwrap() error {
	return e.Err
}
