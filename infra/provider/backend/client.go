// Package backend talks to the conversion backend: a bearer-authenticated
// connectivity probe and the secret-protected deposit webhook.
package backend

import (
	"context"
	"errors"
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

// WebhookSecretHeader carries the shared secret on webhook calls.
const WebhookSecretHeader = "x-webhook-secret"

// WebhookPath is the conversion endpoint relative to the API base.
const WebhookPath = "/deposits/webhook"

var (
	ErrProbeFailed  = errors.New("connectivity probe failed")
	ErrNotConverted = errors.New("deposit was not converted")
)

// Client calls the conversion backend.
type Client struct {
	apiBase       string
	providerURL   string
	probePath     string
	apiKey        string
	webhookSecret string
	probeTimeout  time.Duration
	httpClient    *http.Client
	logger        *slog.Logger
}

// New creates a Client from cfg.
func New(cfg *config.Backend, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &Client{
		apiBase:       strings.TrimRight(cfg.ApiBase, "/"),
		providerURL:   strings.TrimRight(cfg.ProviderUrl, "/"),
		probePath:     cfg.ProbePath,
		apiKey:        cfg.ApiKey,
		webhookSecret: cfg.WebhookSecret,
		probeTimeout:  probeTimeout,
		httpClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		logger:        logger.With("component", "backend-client"),
	}
}

// Probe checks that the provider configuration endpoint answers 2xx within
// the probe timeout. Any failure wraps ErrProbeFailed and
// provider.ErrProviderUnavailable.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	url := c.providerURL + c.probePath
	header := http.Header{}
	if c.apiKey != "" {
		header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if err := httpjson.Get(ctx, c.httpClient, url, header, nil); err != nil {
		c.logger.Warn("Backend probe failed", "url", url, "error", err)
		if errors.Is(err, provider.ErrProviderUnavailable) {
			return fmt.Errorf("%w: %w", ErrProbeFailed, err)
		}
		return fmt.Errorf("%w: %w: %w", ErrProbeFailed, provider.ErrProviderUnavailable, err)
	}
	c.logger.Debug("Backend probe ok", "url", url)
	return nil
}

// ConvertDeposit posts req to the webhook once and validates the answer.
// The returned deposit always has status converted and a stablecoin target.
func (c *Client) ConvertDeposit(ctx context.Context, req DepositRequest) (*Deposit, error) {
	url := c.apiBase + WebhookPath
	header := http.Header{}
	header.Set(WebhookSecretHeader, c.webhookSecret)

	var resp WebhookResponse
	if err := httpjson.Post(ctx, c.httpClient, url, header, req, &resp); err != nil {
		c.logger.Error("Deposit webhook call failed", "reference", req.Reference, "error", err)
		return nil, err
	}
	if err := validateDeposit(resp.Data); err != nil {
		c.logger.Error("Deposit webhook returned unexpected shape", "reference", req.Reference, "error", err)
		return nil, err
	}
	c.logger.Info("Deposit converted",
		"reference", req.Reference,
		"id", resp.Data.ID,
		"to_currency", resp.Data.To.Currency,
		"to_amount", resp.Data.To.Amount,
	)
	return resp.Data, nil
}

func validateDeposit(d *Deposit) error {
	if d == nil {
		return fmt.Errorf("%w: data missing", provider.ErrMalformedResponse)
	}
	if d.Status != StatusConverted {
		return fmt.Errorf("%w: status %q", ErrNotConverted, d.Status)
	}
	if d.To == nil {
		return fmt.Errorf("%w: to missing", provider.ErrMalformedResponse)
	}
	if !currency.Code(strings.ToUpper(d.To.Currency)).IsStablecoin() {
		return fmt.Errorf("%w: unsupported target %q", provider.ErrMalformedResponse, d.To.Currency)
	}
	if d.To.Amount < 0 {
		return fmt.Errorf("%w: negative amount %v", provider.ErrMalformedResponse, d.To.Amount)
	}
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: id missing", provider.ErrMalformedResponse)
	}
	if d.Fx == nil {
		return fmt.Errorf("%w: fx missing", provider.ErrMalformedResponse)
	}
	return nil
}
