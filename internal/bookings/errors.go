package bookings

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrValidation       = errors.New("bookings: validation failed")
	ErrNotFound         = errors.New("bookings: booking not found")
	ErrAlreadyCancelled = errors.New("bookings: booking already cancelled")
	ErrExhausted        = errors.New("bookings: identifier space exhausted")
)

// Reasons attached to a FieldError.
const (
	ReasonRequired      = "required"
	ReasonInvalidFormat = "invalid_format"
	ReasonOutOfRange    = "out_of_range"
)

// FieldError describes one rejected booking field.
type FieldError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FieldNames returns the failing field names in validation order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

// NotFoundError reports an unknown booking identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("bookings: booking %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AlreadyCancelledError is returned when a cancelled booking is cancelled or
// modified again.
type AlreadyCancelledError struct {
	ID          string
	CancelledAt time.Time
}

func (e *AlreadyCancelledError) Error() string {
	return fmt.Sprintf("bookings: booking %s was already cancelled at %s", e.ID, e.CancelledAt.Format(time.RFC3339))
}

func (e *AlreadyCancelledError) Is(target error) bool { return target == ErrAlreadyCancelled }

// ExhaustionError means no further identifiers can be issued. Not user
// correctable.
type ExhaustionError struct {
	Limit int
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("bookings: identifier space exhausted after %s", FormatID(e.Limit))
}

func (e *ExhaustionError) Is(target error) bool { return target == ErrExhausted }
