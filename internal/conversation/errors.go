package conversation

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrExtractionTimeout   = errors.New("conversation: extraction timed out")
	ErrMalformedExtraction = errors.New("conversation: malformed extraction")
)

// ExtractionTimeoutError is returned when the model does not answer in time.
type ExtractionTimeoutError struct {
	Timeout time.Duration
}

func (e *ExtractionTimeoutError) Error() string {
	return fmt.Sprintf("conversation: extraction timed out after %s", e.Timeout)
}

func (e *ExtractionTimeoutError) Is(target error) bool { return target == ErrExtractionTimeout }

// MalformedExtractionError wraps model output that could not be decoded.
type MalformedExtractionError struct {
	Raw string
	Err error
}

func (e *MalformedExtractionError) Error() string {
	if e.Err == nil {
		return ErrMalformedExtraction.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformedExtraction.Error(), e.Err)
}

func (e *MalformedExtractionError) Is(target error) bool { return target == ErrMalformedExtraction }

func (e *MalformedExtractionError) Unwrap() error { return e.Err }
