package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionError_Kinds(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name     string
		err      error
		kind     ErrorKind
		sentinel error
	}{
		{"validation", NewValidationError("quote", errors.New("bad amount")), KindValidation, ErrValidation},
		{"connectivity", NewConnectivityError("probe", "provider", cause), KindConnectivity, ErrCannotConnect},
		{"provider", NewProviderError("webhook", errors.New("status 500")), KindProvider, ErrProviderResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.Equal(t, tt.kind, KindOf(wrapped))
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestConversionError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := NewConnectivityError("probe", "conversion provider", cause)

	assert.Contains(t, err.Error(), "cannot connect")
	assert.Contains(t, err.Error(), "probe: ")
	require.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("mobilemoney")
	require.NoError(t, err)
	assert.Equal(t, PaymentMobileMoney, m)

	m, err = ParsePaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, PaymentCard, m)

	_, err = ParsePaymentMethod("cheque")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}
