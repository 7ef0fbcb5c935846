package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/dalfonso89/currency-converter/internal/apperrors"
)

// ParseAmount parses user input into a non-negative, finite amount.
func ParseAmount(input string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return 0, apperrors.New(apperrors.ErrorTypeInvalidAmount, "please enter a valid number", nil)
	}
	if err := CheckAmount(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// CheckAmount rejects negative, NaN and infinite amounts
func CheckAmount(amount float64) error {
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0):
		return apperrors.New(apperrors.ErrorTypeInvalidAmount, "please enter a valid number", nil)
	case amount < 0:
		return apperrors.New(apperrors.ErrorTypeInvalidAmount, "please enter a positive number", nil)
	}
	return nil
}
