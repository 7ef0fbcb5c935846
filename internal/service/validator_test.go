package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dalfonso89/currency-converter/internal/apperrors"
	"github.com/dalfonso89/currency-converter/internal/testutils"
)

func TestValidator_IsValidCode(t *testing.T) {
	source := new(MockRateSource)
	source.On("FetchCatalog", mock.Anything).Return(threeCurrencyCatalog(), nil)
	validator := NewValidator(source, testutils.MockLogger())

	tests := []struct {
		code     string
		expected bool
	}{
		{"USD", true},
		{"EUR", true},
		{"usd", false},
		{"XXX", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, validator.IsValidCode(context.Background(), tt.code))
		})
	}
}

func TestValidator_FailsClosed(t *testing.T) {
	source := new(MockRateSource)
	source.On("FetchCatalog", mock.Anything).Return(nil, apperrors.New(apperrors.ErrorTypeSourceUnavailable, "down", errors.New("dial tcp")))
	validator := NewValidator(source, testutils.MockLogger())

	assert.False(t, validator.IsValidCode(context.Background(), "USD"))

	valid, invalid := validator.Partition(context.Background(), []string{"USD", "EUR"})
	assert.Empty(t, valid)
	assert.Equal(t, []string{"USD", "EUR"}, invalid)
}

func TestValidator_Partition(t *testing.T) {
	source := new(MockRateSource)
	source.On("FetchCatalog", mock.Anything).Return(threeCurrencyCatalog(), nil)
	validator := NewValidator(source, testutils.MockLogger())

	valid, invalid := validator.Partition(context.Background(), []string{"GBP", "XXX", "USD", "YYY", "EUR"})
	assert.Equal(t, []string{"GBP", "USD", "EUR"}, valid)
	assert.Equal(t, []string{"XXX", "YYY"}, invalid)
}

func TestParseCodes(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"EUR,GBP,JPY", []string{"EUR", "GBP", "JPY"}},
		{" eur , gbp ", []string{"EUR", "GBP"}},
		{"usd,,  ,chf", []string{"USD", "CHF"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCodes(tt.input))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCode("  usd\t"))
	assert.Equal(t, "", NormalizeCode("   "))
}
