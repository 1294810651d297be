package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"positive", 10, false},
		{"fraction", 0.01, false},
		{"zero", 0, true},
		{"negative", -5, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, ValidateRate(0.083))
	assert.ErrorIs(t, ValidateRate(0), ErrInvalidRate)
	assert.ErrorIs(t, ValidateRate(math.Inf(-1)), ErrInvalidRate)
}

func TestConvert(t *testing.T) {
	assert.InDelta(t, 8.30, Convert(100, 0.083), 1e-9)
	assert.InDelta(t, 0.13, Convert(1, 0.125), 1e-9)
	assert.InDelta(t, 1333.33, Convert(100000, 0.0133333), 1e-9)
}

func TestRound(t *testing.T) {
	assert.InDelta(t, 2.68, Round(2.675), 1e-9)
	assert.InDelta(t, 50.0, Round(50), 1e-9)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "8.30", Format(8.3))
	assert.Equal(t, "100.00", Format(100))
}
