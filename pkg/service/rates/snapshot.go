package rates

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/domain"
	"github.com/amirasaad/sendnreceive/pkg/money"
	"github.com/amirasaad/sendnreceive/pkg/provider"
)

// ErrRateUnavailable is returned when a snapshot has no rate for a currency.
var ErrRateUnavailable = errors.New("rate unavailable")

// Snapshot is a consistent view of fiat rates per USD and stablecoin prices.
type Snapshot struct {
	Fiat        map[currency.Code]float64 `json:"fiat"`
	Stablecoins provider.StablecoinPrices `json:"stablecoins,omitempty"`
	Status      domain.QuoteSource        `json:"status"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

// DefaultSnapshot carries the hardcoded rates with status demo.
func DefaultSnapshot(at time.Time) Snapshot {
	return Snapshot{
		Fiat:      currency.DefaultRates(),
		Status:    domain.SourceDemo,
		UpdatedAt: at,
	}
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Fiat = maps.Clone(s.Fiat)
	if s.Stablecoins != nil {
		out.Stablecoins = make(provider.StablecoinPrices, len(s.Stablecoins))
		for id, quotes := range s.Stablecoins {
			out.Stablecoins[id] = maps.Clone(quotes)
		}
	}
	return out
}

// Rate returns the number of units of code per USD.
func (s Snapshot) Rate(code currency.Code) (float64, bool) {
	r, ok := s.Fiat[code]
	return r, ok && r > 0
}

// Convert computes amount of from in to, crossing through USD. The quote
// source mirrors the snapshot status.
func (s Snapshot) Convert(from, to currency.Code, amount float64) (*domain.Quote, error) {
	const op = "rates.Convert"

	for _, c := range []currency.Code{from, to} {
		if c == "" {
			return nil, domain.NewValidationError(op, currency.ErrEmptyCode)
		}
		if !c.IsFiat() {
			return nil, domain.NewValidationError(op, fmt.Errorf("%w: %s", currency.ErrUnsupportedCode, c))
		}
	}
	if err := money.ValidateAmount(amount); err != nil {
		return nil, domain.NewValidationError(op, err)
	}

	rate := 1.0
	if from != to {
		fromRate, ok := s.Rate(from)
		if !ok {
			return nil, domain.NewProviderError(op, fmt.Errorf("%w: %s", ErrRateUnavailable, from))
		}
		toRate, ok := s.Rate(to)
		if !ok {
			return nil, domain.NewProviderError(op, fmt.Errorf("%w: %s", ErrRateUnavailable, to))
		}
		rate = toRate / fromRate
	}

	return &domain.Quote{
		Base:          from,
		Target:        to,
		Amount:        amount,
		Rate:          rate,
		EffectiveRate: rate,
		TargetAmount:  money.Convert(amount, rate),
		Source:        s.Status,
		Provider:      "snapshot",
		Timestamp:     s.UpdatedAt,
	}, nil
}
