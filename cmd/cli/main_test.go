package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/app"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFiat struct{ err error }

func (s stubFiat) FetchRates(context.Context, currency.Code) (map[currency.Code]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return map[currency.Code]float64{currency.EUR: 0.92, currency.GHS: 12.05}, nil
}

type stubStable struct{}

func (stubStable) FetchPrices(context.Context) (provider.StablecoinPrices, error) {
	return provider.StablecoinPrices{"usd-coin": {"usd": 1}, "euro-coin": {"usd": 1.08}}, nil
}

type stubQuote struct{}

func (stubQuote) FetchRate(_ context.Context, from, to currency.Code) (*provider.RateInfo, error) {
	return &provider.RateInfo{FromCurrency: from, ToCurrency: to, Rate: 0.083, Provider: "stub"}, nil
}

func newTestApp(t *testing.T, fiatErr error) *app.App {
	t.Helper()
	a := app.New(&app.Deps{
		FiatRates:       stubFiat{err: fiatErr},
		StablecoinRates: stubStable{},
		QuoteRates:      stubQuote{},
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, &config.App{
		Conversion:  &config.Conversion{DemoMode: true},
		RateRefresh: &config.RateRefresh{Schedule: "@every 1h"},
		Preview:     &config.Preview{Debounce: 10 * time.Millisecond},
		Ledger:      &config.Ledger{DisplayEvents: 5},
	})
	t.Cleanup(a.Close)
	return a
}

func runCommand(t *testing.T, a *app.App, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := execute(context.Background(), a, args, newPrinter(&buf, false))
	return buf.String(), err
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
		wantErr  bool
	}{
		{
			name:     "rates",
			args:     []string{"rates"},
			contains: []string{"status: live", "GHS", "12.0500", "EURC", "1.0800"},
		},
		{
			name:     "quote non-parity",
			args:     []string{"quote", "ghs", "100"},
			contains: []string{"100.00 GHS = 8.30 USD", "via stub"},
		},
		{
			name:     "quote parity",
			args:     []string{"quote", "EUR", "20"},
			contains: []string{"20.00 EUR = 20.00 EUR", "via parity"},
		},
		{
			name:     "convert demo",
			args:     []string{"convert", "GHS", "100", "mobilemoney"},
			contains: []string{"Converted", "8.30 USDC", "(demo)", "USDC 8.30", "[success]"},
		},
		{
			name:     "convert invalid amount",
			args:     []string{"convert", "GHS", "-5"},
			contains: []string{"Conversion failed", "[error]"},
			wantErr:  true,
		},
		{name: "bad method", args: []string{"convert", "GHS", "5", "cheque"}, wantErr: true},
		{name: "unparseable amount", args: []string{"quote", "GHS", "abc"}, wantErr: true},
		{name: "help", args: []string{"help"}, contains: []string{"Usage:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, newTestApp(t, nil), tt.args...)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestExecute_Usage(t *testing.T) {
	a := newTestApp(t, nil)
	_, err := runCommand(t, a, "quote", "GHS")
	assert.ErrorIs(t, err, errUsage)
	_, err = runCommand(t, a, "withdraw")
	assert.ErrorIs(t, err, errUsage)
}

func TestExecute_RatesFallBackWhenProvidersFail(t *testing.T) {
	out, err := runCommand(t, newTestApp(t, errors.New("down")), "rates")
	require.NoError(t, err)
	assert.Contains(t, out, "Providers unavailable")
	assert.Contains(t, out, "status: demo")
}

func TestPrinterColor(t *testing.T) {
	var plain, colored bytes.Buffer
	newPrinter(&plain, false).println(newPrinter(&plain, false).ok("done"))
	p := newPrinter(&colored, true)
	p.println(p.ok("done"))
	assert.Equal(t, "done\n", plain.String())
	assert.Contains(t, colored.String(), "\x1b[")
}
