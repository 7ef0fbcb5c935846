package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalfonso89/currency-converter/internal/apperrors"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  string
	}{
		{"integer", "100", 100, ""},
		{"decimal", "12.50", 12.5, ""},
		{"padded", "  7.25 \n", 7.25, ""},
		{"zero", "0", 0, ""},
		{"exponent", "1e3", 1000, ""},
		{"negative", "-5", 0, "please enter a positive number"},
		{"text", "ten", 0, "please enter a valid number"},
		{"empty", "", 0, "please enter a valid number"},
		{"nan", "NaN", 0, "please enter a valid number"},
		{"infinity", "Inf", 0, "please enter a valid number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := ParseAmount(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrInvalidAmount))
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amount)
		})
	}
}
