package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirasaad/sendnreceive/pkg/currency"
)

// ErrInvalidPaymentMethod is returned for unknown payment method labels.
var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// PaymentMethod is the label of the funding method a deposit came from.
type PaymentMethod string

// Payment methods offered by the wallet.
const (
	PaymentCard         PaymentMethod = "Card"
	PaymentMobileMoney  PaymentMethod = "MobileMoney"
	PaymentBankTransfer PaymentMethod = "BankTransfer"
	PaymentPayPal       PaymentMethod = "PayPal"
)

var paymentMethods = []PaymentMethod{PaymentCard, PaymentMobileMoney, PaymentBankTransfer, PaymentPayPal}

// ParsePaymentMethod matches raw case-insensitively against the known methods.
// An empty label defaults to Card.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PaymentCard, nil
	}
	for _, m := range paymentMethods {
		if strings.EqualFold(string(m), raw) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, raw)
}

// ConversionResult is the outcome of one auto-conversion attempt.
// It is built once and not modified afterwards.
type ConversionResult struct {
	Success       bool          `json:"success"`
	Currency      currency.Code `json:"currency"`
	Amount        float64       `json:"amount"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Stablecoin    currency.Code `json:"stablecoin,omitempty"`
	AmountToMint  float64       `json:"amountToMint"`
	FxInfo        *Quote        `json:"fxInfo"`
	UserID        string        `json:"userId,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	// Authoritative is false for demo-mode credits, which are computed
	// client-side and never confirmed by a backend.
	Authoritative bool      `json:"authoritative"`
	Error         string    `json:"error,omitempty"`
	ErrorKind     ErrorKind `json:"errorKind,omitempty"`
	Err           error     `json:"-"`
}

// FailedResult builds the result returned for any failure.
func FailedResult(code currency.Code, amount float64, method PaymentMethod, err error) *ConversionResult {
	return &ConversionResult{
		Success:       false,
		Currency:      code,
		Amount:        amount,
		PaymentMethod: method,
		Error:         err.Error(),
		ErrorKind:     KindOf(err),
		Err:           err,
	}
}
