package app

import (
	"context"
	"log/slog"

	"github.com/amirasaad/sendnreceive/pkg/cache"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/eventbus"
	"github.com/amirasaad/sendnreceive/pkg/ledger"
	"github.com/amirasaad/sendnreceive/pkg/provider"
	"github.com/amirasaad/sendnreceive/pkg/service/conversion"
	"github.com/amirasaad/sendnreceive/pkg/service/quote"
	"github.com/amirasaad/sendnreceive/pkg/service/rates"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	FiatRates       provider.FiatRateFetcher
	StablecoinRates provider.StablecoinFetcher
	QuoteRates      provider.RateFetcher
	Backend         conversion.DepositConverter
	HealthCheckers  []provider.HealthChecker
	Cache           cache.Cache
	EventBus        eventbus.Bus
	Logger          *slog.Logger
}

type App struct {
	Deps         *Deps
	Config       *config.App
	RateSource   *rates.Source
	QuoteEngine  *quote.Engine
	Previewer    *quote.Previewer
	Ledger       *ledger.Ledger
	Orchestrator *conversion.Orchestrator
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	display := ledger.DefaultDisplayEvents
	if cfg.Ledger != nil {
		display = cfg.Ledger.DisplayEvents
	}
	debounce := quote.DefaultDebounce
	if cfg.Preview != nil {
		debounce = cfg.Preview.Debounce
	}

	app := &App{
		Deps:   deps,
		Config: cfg,
		Ledger: ledger.New(display),
	}

	app.RateSource = rates.New(deps.FiatRates, deps.StablecoinRates, cfg.RateRefresh, deps.Logger)
	if deps.Cache != nil {
		app.RateSource.WithCache(deps.Cache)
	}
	app.QuoteEngine = quote.New(deps.QuoteRates, deps.Logger)
	app.Previewer = quote.NewPreviewer(app.QuoteEngine, debounce, deps.Logger)
	app.Orchestrator = conversion.New(
		cfg.Conversion,
		app.QuoteEngine,
		deps.Backend,
		app.Ledger,
		deps.Logger,
	)

	if deps.EventBus != nil {
		app.RateSource.WithEventBus(deps.EventBus)
		app.Orchestrator.WithEventBus(deps.EventBus)
		app.setupEventBus()
	}
	return app
}

// Start warms and schedules the rate source.
func (a *App) Start(ctx context.Context) error {
	return a.RateSource.Start(ctx)
}

// Close stops background work. It is safe to call more than once.
func (a *App) Close() {
	a.RateSource.Stop()
	a.Previewer.Close()
}

// HealthCheck probes every registered provider.
func (a *App) HealthCheck(ctx context.Context) map[string]error {
	return provider.HealthCheckAll(ctx, a.Deps.HealthCheckers)
}
