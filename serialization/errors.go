package serialization

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSerializer is returned when no serializer is registered for a model type
	ErrNoSerializer = errors.New("no serializer registered for model type")

	// ErrMaxDepthExceeded is returned when nested attribute encoding exceeds the depth bound
	ErrMaxDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// SerializationError records the failure to encode one instance. Instance is
// the offending value; Message is a human-readable description suitable for
// an error document detail.
type SerializationError struct {
	Instance any
	Message  string
	Err      error
}

// Error implements the error interface
func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *SerializationError) Unwrap() error {
	return e.Err
}

func newError(instance any, message string, err error) *SerializationError {
	return &SerializationError{Instance: instance, Message: message, Err: err}
}

// asSerializationError wraps arbitrary errors from a batch item so aggregation
// always carries typed failures.
func asSerializationError(instance any, err error) *SerializationError {
	var serr *SerializationError
	if errors.As(err, &serr) {
		return serr
	}
	return newError(instance, "failed to serialize instance", err)
}

// MultipleErrors aggregates per-item failures from one batch call, in the
// order the failing items were encountered. It is only returned after every
// item in the batch has been attempted.
type MultipleErrors struct {
	Errors []*SerializationError
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	return fmt.Sprintf("%d instances failed to serialize", len(e.Errors))
}
