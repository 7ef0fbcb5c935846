package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dalfonso89/currency-converter/internal/models"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{0, "0.00"},
		{90, "90.00"},
		{89.995, "90.00"},
		{0.125, "0.13"},
		{123456.7, "123456.70"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Money(tt.value), "Money(%v)", tt.value)
	}
}

func TestRate(t *testing.T) {
	assert.Equal(t, "0.900000", Rate(0.9))
	assert.Equal(t, "110.123457", Rate(110.1234567))
	assert.Equal(t, "1.000000", Rate(1))
}

func TestConversion(t *testing.T) {
	record := models.ConversionRecord{Base: "USD", Target: "EUR", Amount: 100, Converted: 90, Rate: 0.9}
	assert.Equal(t, "100.00 USD = 90.00 EUR (rate: 0.900000)", Conversion(record))

	same := models.ConversionRecord{Base: "USD", Target: "USD", Amount: 5, Converted: 5, Rate: 1}
	assert.Equal(t, "5.00 USD = 5.00 USD (same currency)", Conversion(same))
}

func TestHistoryEntry(t *testing.T) {
	record := models.ConversionRecord{
		Base: "USD", Target: "GBP", Amount: 10, Converted: 8, Rate: 0.8,
		Timestamp: "2024-01-02T15:04:05.123456",
	}
	assert.Equal(t, "2024-01-02: 10.00 USD → 8.00 GBP", HistoryEntry(record, "→"))
	assert.Equal(t, "2024-01-02: 10.00 USD -> 8.00 GBP", HistoryEntry(record, "->"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Euro", Truncate("Euro", 20))
	assert.Equal(t, "United States Dollar", Truncate("United States Dollar and more", 20))
	assert.Equal(t, "São", Truncate("São Tomé", 3))
}

func TestSentence(t *testing.T) {
	assert.Equal(t, "Please enter a valid number.", Sentence("please enter a valid number"))
	assert.Equal(t, "", Sentence(""))
}
