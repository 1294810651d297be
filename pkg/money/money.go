// Package money holds amount validation and rounding helpers.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of decimals converted amounts are rounded to.
const DisplayPlaces = 2

var (
	// ErrInvalidAmount is returned for zero, negative or non-finite amounts.
	ErrInvalidAmount = errors.New("amount must be a positive finite number")
	// ErrInvalidRate is returned for zero, negative or non-finite rates.
	ErrInvalidRate = errors.New("rate must be a positive finite number")
)

// ValidateAmount checks that amount is finite and greater than zero.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateRate checks that rate is finite and greater than zero.
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return ErrInvalidRate
	}
	return nil
}

// Round rounds amount half away from zero to DisplayPlaces decimals.
func Round(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(DisplayPlaces).Float64()
	return f
}

// Convert multiplies amount by rate in decimal arithmetic and rounds the result.
func Convert(amount, rate float64) float64 {
	f, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(DisplayPlaces).
		Float64()
	return f
}

// Format renders amount with DisplayPlaces decimals.
func Format(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(DisplayPlaces)
}
