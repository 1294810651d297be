// Package quote produces stablecoin conversion quotes for deposits.
package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/domain"
	"github.com/amirasaad/sendnreceive/pkg/money"
	"github.com/amirasaad/sendnreceive/pkg/provider"
)

const (
	op             = "quote.GetQuote"
	providerTarget = "fx quote provider"
	historySize    = 50
)

// Quoter returns a quote for converting amount of base into its stablecoin route.
type Quoter interface {
	GetQuote(ctx context.Context, base currency.Code, amount float64) (*domain.Quote, error)
}

// Engine quotes USD and EUR at parity and routes every other currency
// through USD using the FX rate fetcher.
type Engine struct {
	fetcher provider.RateFetcher
	history *provider.RateHistory
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an Engine. fetcher may be wrapped with a cache; cached rates
// produce quotes with source cached.
func New(fetcher provider.RateFetcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fetcher: fetcher,
		history: provider.NewRateHistory(historySize),
		logger:  logger.With("component", "quote-engine"),
		now:     time.Now,
	}
}

// GetQuote validates the input before any network call, answers USD and EUR
// at 1:1 and otherwise quotes base->USD. Errors are *domain.ConversionError.
func (e *Engine) GetQuote(ctx context.Context, base currency.Code, amount float64) (*domain.Quote, error) {
	if err := validate(base, amount); err != nil {
		return nil, err
	}

	if currency.IsParity(base) {
		return domain.ParityQuote(base, amount, e.now().UTC()), nil
	}

	target := currency.USD
	info, err := e.fetcher.FetchRate(ctx, base, target)
	if err != nil {
		e.logger.Warn("Quote rate unavailable", "base", base, "target", target, "error", err)
		return nil, classify(err)
	}
	if err := money.ValidateRate(info.Rate); err != nil {
		return nil, domain.NewProviderError(op, fmt.Errorf("%w: %s->%s", err, base, target))
	}

	source := domain.SourceLive
	if info.Cached {
		source = domain.SourceCached
	}
	e.history.Add(*info)

	q := &domain.Quote{
		Base:          base,
		Target:        target,
		Amount:        amount,
		Rate:          info.Rate,
		EffectiveRate: info.Rate,
		TargetAmount:  money.Convert(amount, info.Rate),
		Source:        source,
		Provider:      info.Provider,
		Timestamp:     e.now().UTC(),
	}
	e.logger.Debug("Quote computed",
		"base", base, "amount", amount, "rate", q.Rate, "target_amount", q.TargetAmount, "source", source)
	return q, nil
}

// History returns recently fetched rates, oldest first.
func (e *Engine) History() []provider.RateInfo {
	return e.history.Get()
}

func validate(base currency.Code, amount float64) error {
	if base == "" {
		return domain.NewValidationError(op, currency.ErrEmptyCode)
	}
	if !base.IsFiat() {
		return domain.NewValidationError(op, fmt.Errorf("%w: %s", currency.ErrUnsupportedCode, base))
	}
	if err := money.ValidateAmount(amount); err != nil {
		return domain.NewValidationError(op, err)
	}
	return nil
}

func classify(err error) *domain.ConversionError {
	switch {
	case errors.Is(err, provider.ErrProviderUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.NewConnectivityError(op, providerTarget, err)
	default:
		return domain.NewProviderError(op, err)
	}
}

var _ Quoter = (*Engine)(nil)
