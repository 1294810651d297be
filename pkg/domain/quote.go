package domain

import (
	"time"

	"github.com/amirasaad/sendnreceive/pkg/currency"
)

// QuoteSource tells where the rate behind a quote came from.
type QuoteSource string

const (
	// SourceLive is a rate fetched from a provider for this request, or a 1:1 parity rate.
	SourceLive QuoteSource = "live"
	// SourceCached is a previously fetched rate served from cache.
	SourceCached QuoteSource = "cached"
	// SourceDemo is a hardcoded fallback rate.
	SourceDemo QuoteSource = "demo"
)

// Quote is a conversion rate and converted amount for a currency pair,
// valid at Timestamp only.
type Quote struct {
	Base          currency.Code `json:"base"`
	Target        currency.Code `json:"target"`
	Amount        float64       `json:"amount"`
	Rate          float64       `json:"rate"`
	EffectiveRate float64       `json:"effectiveRate"`
	TargetAmount  float64       `json:"targetAmount"`
	Source        QuoteSource   `json:"source"`
	Provider      string        `json:"provider,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// ParityQuote returns the 1:1 quote used for USD and EUR deposits.
func ParityQuote(base currency.Code, amount float64, at time.Time) *Quote {
	return &Quote{
		Base:          base,
		Target:        base,
		Amount:        amount,
		Rate:          1,
		EffectiveRate: 1,
		TargetAmount:  amount,
		Source:        SourceLive,
		Provider:      "parity",
		Timestamp:     at,
	}
}
