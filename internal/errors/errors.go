package errors

import "fmt"

// Error is a domain error carrying a machine-readable code.
type Error struct {
	// Code identifies the failure class.
	Code Code
	// Message is the developer-facing description.
	Message string
	// Metadata holds values interpolated into localized messages.
	Metadata map[string]string
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithMetadata returns a copy of the error carrying the provided metadata.
func (e *Error) WithMetadata(metadata map[string]string) *Error {
	clone := *e
	clone.Metadata = metadata
	return &clone
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is a domain error with the same code.
// This lets call sites compare against sentinel errors with errors.Is
// even when metadata differs.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
