// Package conversion drives deposit to stablecoin auto-conversion.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/sendnreceive/infra/provider/backend"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/domain"
	"github.com/amirasaad/sendnreceive/pkg/domain/events"
	"github.com/amirasaad/sendnreceive/pkg/eventbus"
	"github.com/amirasaad/sendnreceive/pkg/ledger"
	"github.com/amirasaad/sendnreceive/pkg/money"
	"github.com/amirasaad/sendnreceive/pkg/provider"
	"github.com/amirasaad/sendnreceive/pkg/service/quote"
	"github.com/google/uuid"
)

const (
	op              = "conversion.PerformAutoConversion"
	providerTarget  = "conversion provider"
	backendTarget   = "conversion backend"
	demoTransaction = "demo"

	ModeDemo      = "demo"
	ModeNetworked = "networked"
)

// ErrBackendNotConfigured is returned in networked mode without a backend client.
var ErrBackendNotConfigured = errors.New("conversion backend not configured")

// DepositConverter is the conversion backend used in networked mode.
type DepositConverter interface {
	Probe(ctx context.Context) error
	ConvertDeposit(ctx context.Context, req backend.DepositRequest) (*backend.Deposit, error)
}

// Orchestrator converts deposits in the mode fixed at construction.
type Orchestrator struct {
	demoMode bool
	quoter   quote.Quoter
	backend  DepositConverter
	ledger   *ledger.Ledger
	bus      eventbus.Bus
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an Orchestrator. converter may be nil in demo mode.
func New(
	cfg *config.Conversion,
	quoter quote.Quoter,
	converter DepositConverter,
	l *ledger.Ledger,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	demo := true
	if cfg != nil {
		demo = cfg.DemoMode
	}
	return &Orchestrator{
		demoMode: demo,
		quoter:   quoter,
		backend:  converter,
		ledger:   l,
		logger:   logger.With("component", "conversion"),
		now:      time.Now,
	}
}

// WithEventBus publishes conversion outcomes on bus.
func (o *Orchestrator) WithEventBus(bus eventbus.Bus) *Orchestrator {
	o.bus = bus
	return o
}

// Mode returns "demo" or "networked".
func (o *Orchestrator) Mode() string {
	if o.demoMode {
		return ModeDemo
	}
	return ModeNetworked
}

// Ledger returns the ledger credited by conversions.
func (o *Orchestrator) Ledger() *ledger.Ledger {
	return o.ledger
}

// PerformAutoConversion converts amount of code into its stablecoin. It
// never returns nil and never panics; failures are reported in the result.
func (o *Orchestrator) PerformAutoConversion(
	ctx context.Context,
	code currency.Code,
	amount float64,
	method domain.PaymentMethod,
) *domain.ConversionResult {
	if method == "" {
		method = domain.PaymentCard
	}
	mode := o.Mode()
	o.ledger.AppendEvent(
		fmt.Sprintf("Starting auto-conversion of %s %s via %s (%s mode)", formatAmount(amount), code, method, mode),
		ledger.EventInfo,
	)
	o.emit(ctx, events.NewConversionRequested(string(code), amount, string(method), mode))

	parsed, err := currency.Parse(string(code))
	if err != nil {
		return o.fail(ctx, code, amount, method, domain.NewValidationError(op, err))
	}
	if err := money.ValidateAmount(amount); err != nil {
		return o.fail(ctx, parsed, amount, method, domain.NewValidationError(op, err))
	}
	pm, err := domain.ParsePaymentMethod(string(method))
	if err != nil {
		return o.fail(ctx, parsed, amount, method, domain.NewValidationError(op, err))
	}
	method = pm

	if o.demoMode {
		return o.convertDemo(ctx, parsed, amount, method)
	}
	return o.convertNetworked(ctx, parsed, amount, method)
}

// ---- Demo mode ----

func (o *Orchestrator) convertDemo(
	ctx context.Context,
	code currency.Code,
	amount float64,
	method domain.PaymentMethod,
) *domain.ConversionResult {
	coin := currency.StablecoinFor(code)

	q, err := o.quoter.GetQuote(ctx, code, amount)
	amountToMint := amount
	if err != nil {
		q = nil
		o.logger.Warn("Quote failed in demo mode, minting deposit amount", "currency", code, "error", err)
		o.ledger.AppendEvent(
			fmt.Sprintf("Quote unavailable (%v); falling back to %s %s", err, formatAmount(amount), coin),
			ledger.EventInfo,
		)
	} else {
		amountToMint = q.TargetAmount
	}

	if err := o.ledger.Credit(coin, amountToMint); err != nil {
		return o.fail(ctx, code, amount, method, err)
	}

	res := &domain.ConversionResult{
		Success:       true,
		Currency:      code,
		Amount:        amount,
		PaymentMethod: method,
		Stablecoin:    coin,
		AmountToMint:  amountToMint,
		FxInfo:        q,
		UserID:        "demo-user-" + uuid.NewString()[:8],
		TransactionID: demoTransaction,
		Authoritative: false,
	}
	return o.succeed(ctx, res)
}

// ---- Networked mode ----

func (o *Orchestrator) convertNetworked(
	ctx context.Context,
	code currency.Code,
	amount float64,
	method domain.PaymentMethod,
) *domain.ConversionResult {
	if o.backend == nil {
		return o.fail(ctx, code, amount, method,
			domain.NewConnectivityError(op, backendTarget, ErrBackendNotConfigured))
	}

	if err := o.backend.Probe(ctx); err != nil {
		return o.fail(ctx, code, amount, method, domain.NewConnectivityError(op, providerTarget, err))
	}

	req := backend.DepositRequest{
		UserID:    "user-" + uuid.NewString(),
		Currency:  string(code),
		Amount:    amount,
		Reference: "dep-" + uuid.NewString(),
	}
	o.ledger.AppendEvent(fmt.Sprintf("Submitting deposit %s", req.Reference), ledger.EventInfo)

	dep, err := o.backend.ConvertDeposit(ctx, req)
	if err != nil {
		if errors.Is(err, provider.ErrProviderUnavailable) {
			return o.fail(ctx, code, amount, method, domain.NewConnectivityError(op, backendTarget, err))
		}
		return o.fail(ctx, code, amount, method, domain.NewProviderError(op, err))
	}

	coin := currency.Code(strings.ToUpper(dep.To.Currency))
	if err := o.ledger.Credit(coin, dep.To.Amount); err != nil {
		return o.fail(ctx, code, amount, method, domain.NewProviderError(op, err))
	}

	res := &domain.ConversionResult{
		Success:       true,
		Currency:      code,
		Amount:        amount,
		PaymentMethod: method,
		Stablecoin:    coin,
		AmountToMint:  dep.To.Amount,
		FxInfo:        o.backendQuote(code, amount, coin, dep),
		UserID:        req.UserID,
		TransactionID: dep.ID,
		Authoritative: true,
	}
	return o.succeed(ctx, res)
}

func (o *Orchestrator) backendQuote(
	code currency.Code,
	amount float64,
	coin currency.Code,
	dep *backend.Deposit,
) *domain.Quote {
	if dep.Fx == nil {
		return nil
	}
	at := dep.Fx.Timestamp
	if at.IsZero() {
		at = o.now().UTC()
	}
	return &domain.Quote{
		Base:          code,
		Target:        coin,
		Amount:        amount,
		Rate:          dep.Fx.Rate,
		EffectiveRate: dep.Fx.Rate,
		TargetAmount:  dep.To.Amount,
		Source:        domain.SourceLive,
		Provider:      "backend",
		Timestamp:     at,
	}
}

// ---- Helper Functions ----

func (o *Orchestrator) succeed(ctx context.Context, res *domain.ConversionResult) *domain.ConversionResult {
	o.ledger.AppendEvent(
		fmt.Sprintf("Converted %s %s to %s %s", formatAmount(res.Amount), res.Currency,
			formatAmount(res.AmountToMint), res.Stablecoin),
		ledger.EventSuccess,
	)
	o.logger.Info("Auto-conversion completed",
		"currency", res.Currency,
		"amount", res.Amount,
		"stablecoin", res.Stablecoin,
		"amount_to_mint", res.AmountToMint,
		"transaction_id", res.TransactionID,
		"authoritative", res.Authoritative,
	)
	o.emit(ctx, events.NewConversionCompleted(
		string(res.Currency), res.Amount, string(res.Stablecoin), res.AmountToMint,
		res.UserID, res.TransactionID, res.Authoritative,
	))
	return res
}

func (o *Orchestrator) fail(
	ctx context.Context,
	code currency.Code,
	amount float64,
	method domain.PaymentMethod,
	err error,
) *domain.ConversionResult {
	res := domain.FailedResult(code, amount, method, err)
	o.ledger.AppendEvent("Conversion failed: "+res.Error, ledger.EventError)
	o.logger.Error("Auto-conversion failed",
		"currency", code, "amount", amount, "kind", res.ErrorKind, "error", err)
	o.emit(ctx, events.NewConversionFailed(string(code), amount, string(res.ErrorKind), res.Error))
	return res
}

func (o *Orchestrator) emit(ctx context.Context, e events.Event) {
	if o.bus == nil {
		return
	}
	if err := o.bus.Emit(ctx, e); err != nil {
		o.logger.Error("Failed to publish conversion event", "type", e.Type(), "error", err)
	}
}

func formatAmount(v float64) string {
	return money.Format(v)
}
