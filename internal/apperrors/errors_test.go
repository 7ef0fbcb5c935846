package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := New(ErrorTypeRateUnavailable, "rate for USD/EUR unavailable", io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("convert: %w", err)

	assert.True(t, errors.Is(wrapped, ErrRateUnavailable))
	assert.False(t, errors.Is(wrapped, ErrSourceUnavailable))
	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))
	assert.Equal(t, ErrorTypeRateUnavailable, TypeOf(wrapped))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "invalid amount", ErrInvalidAmount.Error())
	assert.Equal(t, "bad: boom", New(ErrorTypeUnknown, "bad", errors.New("boom")).Error())
}

func TestTypeOf_Unknown(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "source unavailable", ErrorTypeSourceUnavailable.String())
	assert.Equal(t, "persistence unavailable", ErrorTypePersistenceUnavailable.String())
	assert.Equal(t, "unknown error", ErrorType(99).String())
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "none"},
		{"cancelled", fmt.Errorf("get: %w", context.Canceled), "cancelled"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"other", errors.New("unexpected character"), "response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Describe(tt.err))
		})
	}
}
