package analyzer

import (
	"errors"
	"fmt"
)

// ErrEmptyImage is the cause of a DecodeError for a zero-length buffer.
var ErrEmptyImage = errors.New("image data is empty")

// DecodeError reports image bytes that could not be turned into a canonical image.
// Retrying with the same bytes will always fail again.
type DecodeError struct {
	Reason string
	Cause  error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode image: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("decode image: %s", e.Reason)
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// IsDecodeError reports whether err is, or wraps, a *DecodeError.
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}
