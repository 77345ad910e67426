package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the categories of failure a harvest run can hit
type ErrorType string

const (
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeHTTPStatus      ErrorType = "http_status"
	ErrorTypeHost            ErrorType = "host"
	ErrorTypeWrite           ErrorType = "write"
	ErrorTypeConsentDeclined ErrorType = "consent_declined"
	ErrorTypeEmptyHarvest    ErrorType = "empty_harvest"
	ErrorTypeUnknown         ErrorType = "unknown"
)

// Error represents a typed failure with an optional status code
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Is reports whether target is an *Error of the same type, so sentinel
// errors match wrapped errors carrying a different message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

var (
	// ErrCancelled is returned when the user declines directory access or
	// interrupts a run before anything is written
	ErrCancelled = &Error{Type: ErrorTypeConsentDeclined, Message: "run cancelled"}

	// ErrEmptyHarvest is returned when a full scroll found no items
	ErrEmptyHarvest = &Error{Type: ErrorTypeEmptyHarvest, Message: "no images found on this board"}
)

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// FromStatusCode builds the error recorded for a non-2xx fetch response
func FromStatusCode(statusCode int) *Error {
	return &Error{
		Type:    ErrorTypeHTTPStatus,
		Message: fmt.Sprintf("unexpected status %d", statusCode),
		Code:    statusCode,
	}
}

// TypeOf extracts the ErrorType from err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsCancelled reports whether err stems from a declined consent prompt or
// an interrupted run
func IsCancelled(err error) bool {
	return stderrors.Is(err, ErrCancelled)
}

// IsEmptyHarvest reports whether err stems from a board with no items
func IsEmptyHarvest(err error) bool {
	return stderrors.Is(err, ErrEmptyHarvest)
}
