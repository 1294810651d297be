// Package exchangerateapi fetches fiat rate tables from exchangerate-api.com.
package exchangerateapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amirasaad/sendnreceive/infra/provider/httpjson"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/provider"
)

const name = "exchangerate-api"

// latestResponse is the v4 "latest" payload, e.g. {"base":"USD","rates":{"EUR":0.92}}.
type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Provider implements provider.FiatRateFetcher and provider.RateFetcher.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Provider; cfg.HTTPTimeout bounds every request.
func New(cfg *config.RateProvider, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		baseURL:    strings.TrimRight(cfg.ApiUrl, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger.With("provider", name),
	}
}

// WithAPIKey sends key as a bearer token.
func (p *Provider) WithAPIKey(key string) *Provider {
	p.apiKey = key
	return p
}

// FetchRates returns the rate table for base. Any failure yields a nil map.
func (p *Provider) FetchRates(
	ctx context.Context,
	base currency.Code,
) (map[currency.Code]float64, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, base)
	p.logger.Debug("Fetching fiat rates", "url", url)

	var header http.Header
	if p.apiKey != "" {
		header = http.Header{"Authorization": []string{"Bearer " + p.apiKey}}
	}

	var resp latestResponse
	if err := httpjson.Get(ctx, p.httpClient, url, header, &resp); err != nil {
		p.logger.Warn("Fiat rate fetch failed", "error", err)
		return nil, err
	}
	if len(resp.Rates) == 0 {
		return nil, fmt.Errorf("%w: rates field missing", provider.ErrMalformedResponse)
	}

	rates := make(map[currency.Code]float64, len(resp.Rates))
	for code, rate := range resp.Rates {
		if rate <= 0 {
			continue
		}
		rates[currency.Code(strings.ToUpper(code))] = rate
	}
	p.logger.Info("Fiat rates fetched", "base", base, "count", len(rates))
	return rates, nil
}

// FetchRate reads the from->to rate out of the table for from. The v4 API
// quotes every base it lists, which covers currencies the ECB set lacks.
func (p *Provider) FetchRate(ctx context.Context, from, to currency.Code) (*provider.RateInfo, error) {
	rates, err := p.FetchRates(ctx, from)
	if err != nil {
		return nil, err
	}
	rate, ok := rates[to]
	if !ok {
		return nil, fmt.Errorf("%w: %s->%s", provider.ErrMissingRate, from, to)
	}
	return &provider.RateInfo{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		Timestamp:    time.Now().UTC(),
		Provider:     name,
	}, nil
}

// CheckHealth fetches the USD table.
func (p *Provider) CheckHealth(ctx context.Context) error {
	_, err := p.FetchRates(ctx, currency.USD)
	return err
}

// Metadata describes the provider.
func (p *Provider) Metadata() provider.ProviderMetadata {
	return provider.ProviderMetadata{Name: name, URL: p.baseURL, IsActive: true}
}

var (
	_ provider.FiatRateFetcher = (*Provider)(nil)
	_ provider.RateFetcher     = (*Provider)(nil)
	_ provider.HealthChecker   = (*Provider)(nil)
	_ provider.Named           = (*Provider)(nil)
)
