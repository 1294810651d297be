package initializer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	infracache "github.com/amirasaad/sendnreceive/infra/cache"
	infraeventbus "github.com/amirasaad/sendnreceive/infra/eventbus"
	"github.com/amirasaad/sendnreceive/infra/provider/backend"
	"github.com/amirasaad/sendnreceive/infra/provider/cachedrate"
	"github.com/amirasaad/sendnreceive/infra/provider/coingecko"
	"github.com/amirasaad/sendnreceive/infra/provider/exchangerateapi"
	"github.com/amirasaad/sendnreceive/infra/provider/frankfurter"
	"github.com/amirasaad/sendnreceive/pkg/app"
	"github.com/amirasaad/sendnreceive/pkg/cache"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/eventbus"
	"github.com/amirasaad/sendnreceive/pkg/provider"
)

const redisPingTimeout = 3 * time.Second

type closer interface {
	Close() error
}

// InitializeDependencies initializes all the application dependencies.
// The returned cleanup releases cache and event bus connections.
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	cleanup func(),
	err error,
) {
	logger := SetupLogger(cfg.Log)
	return initializeDependencies(cfg, logger)
}

func initializeDependencies(cfg *config.App, logger *slog.Logger) (*app.Deps, func(), error) {
	var closers []closer
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("Failed to close dependency", "error", err)
			}
		}
	}

	deps := &app.Deps{Logger: logger}

	c, err := initCache(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cl, ok := c.(closer); ok {
		closers = append(closers, cl)
	}
	deps.Cache = c

	bus, err := initEventBus(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if cl, ok := bus.(closer); ok {
		closers = append(closers, cl)
	}
	deps.EventBus = bus

	if cfg.RateProviders == nil || cfg.RateProviders.Fiat == nil ||
		cfg.RateProviders.Stablecoin == nil || cfg.RateProviders.Quote == nil {
		cleanup()
		return nil, nil, fmt.Errorf("rate provider configuration is incomplete")
	}

	fiat := exchangerateapi.New(cfg.RateProviders.Fiat, logger)
	stable := coingecko.New(cfg.RateProviders.Stablecoin, logger)
	fx := frankfurter.New(cfg.RateProviders.Quote, logger)

	var ttl time.Duration
	var prefix string
	if cfg.RateRefresh != nil {
		ttl = cfg.RateRefresh.CacheTTL
		prefix = cfg.RateRefresh.Prefix
	}
	// Frankfurter carries ECB currencies only; GHS, NGN and AED come from
	// the exchangerate-api table.
	quoteRates := cachedrate.New(provider.FallbackRateFetcher{fx, fiat}, c, ttl, prefix, logger)

	deps.FiatRates = fiat
	deps.StablecoinRates = stable
	deps.QuoteRates = quoteRates
	deps.HealthCheckers = []provider.HealthChecker{fiat, stable, fx}

	demo := cfg.Conversion == nil || cfg.Conversion.DemoMode
	if !demo {
		if cfg.Backend == nil {
			cleanup()
			return nil, nil, fmt.Errorf("networked mode requires backend configuration")
		}
		deps.Backend = backend.New(cfg.Backend, logger)
	}

	logger.Info("Dependencies initialized",
		"demo_mode", demo,
		"cache", fmt.Sprintf("%T", c),
		"event_bus", fmt.Sprintf("%T", bus),
	)
	return deps, cleanup, nil
}

// initCache uses Redis when configured and reachable, memory otherwise.
func initCache(cfg *config.App, logger *slog.Logger) (cache.Cache, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return infracache.NewMemoryCache(), nil
	}
	rc, err := infracache.NewRedisCache(cfg.Redis.URL, "", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cache: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		logger.Warn("Redis cache unreachable, falling back to memory", "error", err)
		_ = rc.Close()
		return infracache.NewMemoryCache(), nil
	}
	return rc, nil
}

// initEventBus uses Redis Streams when configured and reachable, memory otherwise.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	if cfg.Redis == nil || cfg.Redis.URL == "" {
		return infraeventbus.NewWithMemory(logger), nil
	}
	bus, err := infraeventbus.NewWithRedis(cfg.Redis.URL, cfg.Redis.Stream, cfg.Redis.Group, logger)
	if err != nil {
		if cfg.Redis.Stream == "" || cfg.Redis.Group == "" {
			return nil, fmt.Errorf("failed to create Redis event bus: %w", err)
		}
		logger.Warn("Redis event bus unavailable, falling back to memory", "error", err)
		return infraeventbus.NewWithMemory(logger), nil
	}
	return bus, nil
}
