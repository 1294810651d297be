// Package currency defines the fiat and stablecoin codes the wallet works with.
package currency

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCode is returned when no currency code was supplied.
	ErrEmptyCode = errors.New("currency code is required")
	// ErrUnsupportedCode is returned for codes outside the supported set.
	ErrUnsupportedCode = errors.New("currency not supported")
	// ErrNotStablecoin is returned when a fiat code is used where a stablecoin is expected.
	ErrNotStablecoin = errors.New("not a stablecoin")
)

// Code represents a currency code (e.g., "USD", "USDC").
type Code string

// Supported fiat codes
const (
	USD Code = "USD" // US Dollar
	EUR Code = "EUR" // Euro
	GHS Code = "GHS" // Ghanaian Cedi
	AED Code = "AED" // UAE Dirham
	NGN Code = "NGN" // Nigerian Naira
)

// Stablecoin codes
const (
	USDC Code = "USDC" // USD Coin
	EURC Code = "EURC" // Euro Coin
)

var fiat = []Code{USD, EUR, GHS, AED, NGN}

var stablecoins = []Code{USDC, EURC}

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// Parse normalizes raw input and checks it is a supported fiat code.
func Parse(raw string) (Code, error) {
	code := Code(strings.ToUpper(strings.TrimSpace(raw)))
	if code == "" {
		return "", ErrEmptyCode
	}
	if !code.IsFiat() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCode, code)
	}
	return code, nil
}

// IsFiat reports whether c is one of the supported deposit currencies.
func (c Code) IsFiat() bool {
	for _, f := range fiat {
		if f == c {
			return true
		}
	}
	return false
}

// IsStablecoin reports whether c is USDC or EURC.
func (c Code) IsStablecoin() bool {
	for _, s := range stablecoins {
		if s == c {
			return true
		}
	}
	return false
}

// Fiat returns the supported deposit currencies.
func Fiat() []Code {
	out := make([]Code, len(fiat))
	copy(out, fiat)
	return out
}

// Stablecoins returns the stablecoins balances are kept in.
func Stablecoins() []Code {
	out := make([]Code, len(stablecoins))
	copy(out, stablecoins)
	return out
}

// StablecoinFor maps a deposit currency to the stablecoin it is minted into.
// EUR goes to EURC, every other currency to USDC.
func StablecoinFor(c Code) Code {
	if c == EUR {
		return EURC
	}
	return USDC
}

// IsParity reports whether deposits in c convert 1:1 without an FX lookup.
func IsParity(c Code) bool {
	return c == USD || c == EUR
}

// DefaultRates are the per-USD fallback rates used when the fiat
// provider has never answered.
func DefaultRates() map[Code]float64 {
	return map[Code]float64{
		USD: 1,
		EUR: 0.92,
		GHS: 12.5,
		AED: 3.67,
		NGN: 750,
	}
}
