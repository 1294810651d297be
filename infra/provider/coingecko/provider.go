// Package coingecko fetches stablecoin prices from the CoinGecko simple price API.
package coingecko

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/amirasaad/sendnreceive/infra/provider/httpjson"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/provider"
)

const name = "coingecko"

// Coin ids requested from the price endpoint.
const (
	USDCoin  = "usd-coin"
	EuroCoin = "euro-coin"
	Solana   = "solana"
)

var (
	coinIDs      = []string{USDCoin, EuroCoin, Solana}
	vsCurrencies = []string{"usd", "eur", "ghs", "ngn", "aed"}
)

// Provider implements provider.StablecoinFetcher.
type Provider struct {
	baseURL    string
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

// FetchPrices returns prices for the USDC, EURC and SOL coins.
func (p *Provider) FetchPrices(ctx context.Context) (provider.StablecoinPrices, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(coinIDs, ","))
	q.Set("vs_currencies", strings.Join(vsCurrencies, ","))
	endpoint := p.baseURL + "?" + q.Encode()
	p.logger.Debug("Fetching stablecoin prices", "url", endpoint)

	var prices provider.StablecoinPrices
	if err := httpjson.Get(ctx, p.httpClient, endpoint, nil, &prices); err != nil {
		p.logger.Warn("Stablecoin price fetch failed", "error", err)
		return nil, err
	}
	if _, ok := prices[USDCoin]; !ok {
		return nil, fmt.Errorf("%w: %s price missing", provider.ErrMalformedResponse, USDCoin)
	}
	p.logger.Info("Stablecoin prices fetched", "coins", len(prices))
	return prices, nil
}

// CheckHealth fetches the price table.
func (p *Provider) CheckHealth(ctx context.Context) error {
	_, err := p.FetchPrices(ctx)
	return err
}

// Metadata describes the provider.
func (p *Provider) Metadata() provider.ProviderMetadata {
	return provider.ProviderMetadata{Name: name, URL: p.baseURL, IsActive: true}
}

var (
	_ provider.StablecoinFetcher = (*Provider)(nil)
	_ provider.HealthChecker     = (*Provider)(nil)
	_ provider.Named             = (*Provider)(nil)
)
