package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorType classifies failures so callers can react with a type switch
// instead of matching on message text.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeSourceUnavailable
	ErrorTypeRateUnavailable
	ErrorTypeInvalidCurrencyCode
	ErrorTypeInvalidAmount
	ErrorTypePersistenceUnavailable
)

func (errorType ErrorType) String() string {
	switch errorType {
	case ErrorTypeSourceUnavailable:
		return "source unavailable"
	case ErrorTypeRateUnavailable:
		return "rate unavailable"
	case ErrorTypeInvalidCurrencyCode:
		return "invalid currency code"
	case ErrorTypeInvalidAmount:
		return "invalid amount"
	case ErrorTypePersistenceUnavailable:
		return "persistence unavailable"
	default:
		return "unknown error"
	}
}

// Error carries an ErrorType together with a message and an optional cause.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same Type, so errors.Is(err, ErrRateUnavailable)
// works regardless of message or cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Type == e.Type
}

var (
	ErrSourceUnavailable      = &Error{Type: ErrorTypeSourceUnavailable, Message: "currency catalog unavailable"}
	ErrRateUnavailable        = &Error{Type: ErrorTypeRateUnavailable, Message: "exchange rate unavailable"}
	ErrInvalidCurrencyCode    = &Error{Type: ErrorTypeInvalidCurrencyCode, Message: "invalid currency code"}
	ErrInvalidAmount          = &Error{Type: ErrorTypeInvalidAmount, Message: "invalid amount"}
	ErrPersistenceUnavailable = &Error{Type: ErrorTypePersistenceUnavailable, Message: "history persistence unavailable"}
)

// New builds an *Error of the given type.
func New(errorType ErrorType, message string, cause error) *Error {
	return &Error{Type: errorType, Message: message, Cause: cause}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var appError *Error
	if errors.As(err, &appError) {
		return appError.Type
	}
	return ErrorTypeUnknown
}

// Describe gives a short label for the underlying cause of a transport
// failure, used when logging.
func Describe(err error) string {
	var netError net.Error
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netError) && netError.Timeout():
		return "timeout"
	case errors.As(err, &netError):
		return "network"
	default:
		return "response"
	}
}
