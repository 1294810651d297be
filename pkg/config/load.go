package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultFiatRatesURL       = "https://api.exchangerate-api.com/v4/latest"
	DefaultStablecoinRatesURL = "https://api.coingecko.com/api/v3/simple/price"
	// DefaultQuoteURL serves ECB reference rates, which exclude GHS, NGN and
	// AED. Those pairs fall through to the fiat provider.
	DefaultQuoteURL = "https://api.frankfurter.app"
)

func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	if len(envFilePath) == 0 {
		logger.Debug("No environment file specified, trying default .env")
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		logger.Debug("Looking for environment file", "path", path)
		foundPath, err := FindEnvTest(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	logger.Info("No valid environment files found, using process environment")
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	applyProviderDefaults(&cfg)

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"demo_mode", cfg.Conversion.DemoMode,
		"backend_api_base", cfg.Backend.ApiBase,
		"backend_provider_url", cfg.Backend.ProviderUrl,
		"backend_api_key", maskValue(cfg.Backend.ApiKey),
		"backend_webhook_secret", maskValue(cfg.Backend.WebhookSecret),
		"fiat_rates_url", cfg.RateProviders.Fiat.ApiUrl,
		"stablecoin_rates_url", cfg.RateProviders.Stablecoin.ApiUrl,
		"quote_url", cfg.RateProviders.Quote.ApiUrl,
		"refresh_schedule", cfg.RateRefresh.Schedule,
		"redis", cfg.Redis.URL != "",
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
	)
	return &cfg, nil
}

// applyProviderDefaults fills the public endpoints the provider structs share a tag for.
func applyProviderDefaults(cfg *App) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.RateProviders.Fiat.ApiUrl == "" {
		cfg.RateProviders.Fiat.ApiUrl = DefaultFiatRatesURL
	}
	if cfg.RateProviders.Stablecoin.ApiUrl == "" {
		cfg.RateProviders.Stablecoin.ApiUrl = DefaultStablecoinRatesURL
	}
	if cfg.RateProviders.Quote.ApiUrl == "" {
		cfg.RateProviders.Quote.ApiUrl = DefaultQuoteURL
	}
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
