package webapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/app"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/provider"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type stubFiat struct{}

func (stubFiat) FetchRates(context.Context, currency.Code) (map[currency.Code]float64, error) {
	return map[currency.Code]float64{currency.EUR: 0.92, currency.GHS: 12.5, currency.NGN: 1500}, nil
}

type stubStable struct{}

func (stubStable) FetchPrices(context.Context) (provider.StablecoinPrices, error) {
	return provider.StablecoinPrices{"usd-coin": {"usd": 1}}, nil
}

// stubQuote answers 0.083 for GHS and a 500 for NGN.
type stubQuote struct{}

func (stubQuote) FetchRate(_ context.Context, from, to currency.Code) (*provider.RateInfo, error) {
	if from == currency.NGN {
		return nil, &provider.StatusError{StatusCode: http.StatusInternalServerError}
	}
	return &provider.RateInfo{FromCurrency: from, ToCurrency: to, Rate: 0.083, Provider: "stub"}, nil
}

func (stubQuote) CheckHealth(context.Context) error { return nil }

func (stubQuote) Metadata() provider.ProviderMetadata {
	return provider.ProviderMetadata{Name: "stub", IsActive: true}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Title   string          `json:"title"`
	Detail  string          `json:"detail"`
	Errors  json.RawMessage `json:"errors"`
}

type WebAPITestSuite struct {
	suite.Suite
	app   *app.App
	fiber *fiber.App
}

func (s *WebAPITestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.app = app.New(&app.Deps{
		FiatRates:       stubFiat{},
		StablecoinRates: stubStable{},
		QuoteRates:      stubQuote{},
		HealthCheckers:  []provider.HealthChecker{stubQuote{}},
		Logger:          logger,
	}, &config.App{
		Conversion:  &config.Conversion{DemoMode: true},
		RateRefresh: &config.RateRefresh{Schedule: "@every 1h"},
		Preview:     &config.Preview{Debounce: 5 * time.Millisecond},
		Ledger:      &config.Ledger{DisplayEvents: 5},
		RateLimit:   &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
	})
	s.fiber = SetupApp(s.app)
}

func (s *WebAPITestSuite) TearDownTest() {
	s.app.Close()
}

func (s *WebAPITestSuite) do(method, target, body string) (int, envelope) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := s.fiber.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint:errcheck

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func (s *WebAPITestSuite) TestRoot() {
	status, _ := s.do(fiber.MethodGet, "/", "")
	s.Equal(fiber.StatusOK, status)
}

func (s *WebAPITestSuite) TestGetRates_DefaultSnapshot() {
	status, env := s.do(fiber.MethodGet, "/rates", "")
	s.Require().Equal(fiber.StatusOK, status)

	var snap struct {
		Fiat   map[string]float64 `json:"fiat"`
		Status string             `json:"status"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &snap))
	s.Equal("demo", snap.Status)
	s.InDelta(1.0, snap.Fiat["USD"], 0)
}

func (s *WebAPITestSuite) TestRefreshRates() {
	status, env := s.do(fiber.MethodPost, "/rates/refresh", "")
	s.Require().Equal(fiber.StatusOK, status)

	var snap struct {
		Fiat   map[string]float64 `json:"fiat"`
		Status string             `json:"status"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &snap))
	s.Equal("live", snap.Status)
	s.InDelta(12.5, snap.Fiat["GHS"], 0)
}

func (s *WebAPITestSuite) TestConvertRates() {
	s.do(fiber.MethodPost, "/rates/refresh", "")

	status, env := s.do(fiber.MethodGet, "/rates/convert?from=ghs&to=USD&amount=125", "")
	s.Require().Equal(fiber.StatusOK, status)
	var q struct {
		TargetAmount float64 `json:"targetAmount"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &q))
	s.InDelta(10.0, q.TargetAmount, 1e-9)

	status, _ = s.do(fiber.MethodGet, "/rates/convert?from=GHS&to=USD&amount=0", "")
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *WebAPITestSuite) TestGetQuote() {
	tests := []struct {
		name   string
		target string
		status int
		amount float64
	}{
		{name: "parity", target: "/quotes?base=EUR&amount=50", status: fiber.StatusOK, amount: 50},
		{name: "through usd", target: "/quotes?base=GHS&amount=100", status: fiber.StatusOK, amount: 8.30},
		{name: "provider error", target: "/quotes?base=NGN&amount=100", status: fiber.StatusBadGateway},
		{name: "unsupported", target: "/quotes?base=XYZ&amount=100", status: fiber.StatusBadRequest},
		{name: "missing amount", target: "/quotes?base=GHS", status: fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			status, env := s.do(fiber.MethodGet, tt.target, "")
			s.Equal(tt.status, status)
			if tt.status != fiber.StatusOK {
				s.NotEmpty(env.Title)
				return
			}
			var q struct {
				TargetAmount float64 `json:"targetAmount"`
			}
			s.Require().NoError(json.Unmarshal(env.Data, &q))
			s.InDelta(tt.amount, q.TargetAmount, 1e-9)
		})
	}
}

func (s *WebAPITestSuite) TestPreview() {
	status, _ := s.do(fiber.MethodGet, "/quotes/preview", "")
	s.Equal(fiber.StatusNotFound, status)

	status, _ = s.do(fiber.MethodPost, "/quotes/preview", `{}`)
	s.Equal(fiber.StatusBadRequest, status)

	status, _ = s.do(fiber.MethodPost, "/quotes/preview", `{"base":"GHS","amount":10}`)
	s.Require().Equal(fiber.StatusAccepted, status)
	status, env := s.do(fiber.MethodPost, "/quotes/preview", `{"amount":100}`)
	s.Require().Equal(fiber.StatusAccepted, status)
	var accepted struct {
		Seq uint64 `json:"seq"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &accepted))

	s.Eventually(func() bool {
		pv, ok := s.app.Previewer.Latest()
		return ok && pv.Seq == accepted.Seq
	}, time.Second, 5*time.Millisecond)

	status, env = s.do(fiber.MethodGet, "/quotes/preview", "")
	s.Require().Equal(fiber.StatusOK, status)
	var pv struct {
		Base  string `json:"base"`
		Quote struct {
			TargetAmount float64 `json:"targetAmount"`
		} `json:"quote"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &pv))
	s.Equal("GHS", pv.Base)
	s.InDelta(8.30, pv.Quote.TargetAmount, 1e-9)
}

func (s *WebAPITestSuite) TestConversions() {
	status, env := s.do(fiber.MethodPost, "/conversions", `{"currency":"GHS","amount":100,"paymentMethod":"mobilemoney"}`)
	s.Require().Equal(fiber.StatusOK, status, env.Detail)
	var res struct {
		Success       bool    `json:"success"`
		Stablecoin    string  `json:"stablecoin"`
		AmountToMint  float64 `json:"amountToMint"`
		PaymentMethod string  `json:"paymentMethod"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &res))
	s.True(res.Success)
	s.Equal("USDC", res.Stablecoin)
	s.InDelta(8.30, res.AmountToMint, 1e-9)
	s.Equal("MobileMoney", res.PaymentMethod)

	status, _ = s.do(fiber.MethodPost, "/conversions", `{"currency":"USD","amount":100,"paymentMethod":"Cheque"}`)
	s.Equal(fiber.StatusBadRequest, status)

	status, _ = s.do(fiber.MethodPost, "/conversions", `{"currency":"USD","amount":-5}`)
	s.Equal(fiber.StatusBadRequest, status)

	status, env = s.do(fiber.MethodPost, "/conversions", `{"currency":"XYZ","amount":5}`)
	s.Equal(fiber.StatusBadRequest, status)
	s.Contains(string(env.Errors), `"errorKind":"validation"`)

	status, env = s.do(fiber.MethodGet, "/ledger", "")
	s.Require().Equal(fiber.StatusOK, status)
	var ledger struct {
		Mode     string `json:"mode"`
		Balances struct {
			USDC string `json:"usdc"`
		} `json:"balances"`
		Recent []struct {
			Type string `json:"type"`
		} `json:"recentEvents"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &ledger))
	s.Equal("demo", ledger.Mode)
	s.Equal("8.3", ledger.Balances.USDC)
	s.LessOrEqual(len(ledger.Recent), 5)

	status, env = s.do(fiber.MethodGet, "/ledger/events?limit=1", "")
	s.Require().Equal(fiber.StatusOK, status)
	var events []struct {
		Type string `json:"type"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &events))
	s.Require().Len(events, 1)
	s.Equal("error", events[0].Type)
}

func (s *WebAPITestSuite) TestHealth() {
	status, env := s.do(fiber.MethodGet, "/health", "")
	s.Require().Equal(fiber.StatusOK, status)
	var h HealthDTO
	s.Require().NoError(json.Unmarshal(env.Data, &h))
	s.Equal("ok", h.Status)
	s.Equal("ok", h.Providers["stub"])
}

func TestWebAPITestSuite(t *testing.T) {
	suite.Run(t, new(WebAPITestSuite))
}

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := app.New(&app.Deps{
		FiatRates:       stubFiat{},
		StablecoinRates: stubStable{},
		QuoteRates:      stubQuote{},
		Logger:          logger,
	}, &config.App{
		Conversion: &config.Conversion{DemoMode: true},
		RateLimit:  &config.RateLimit{MaxRequests: 2, Window: time.Minute},
	})
	t.Cleanup(a.Close)
	f := SetupApp(a)

	for i := range 3 {
		resp, err := f.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		require.NoError(t, err)
		resp.Body.Close() //nolint:errcheck
		if i < 2 {
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		} else {
			assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
			assert.Equal(t, "application/problem+json", resp.Header.Get(fiber.HeaderContentType))
		}
	}
}
