package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	infracache "github.com/amirasaad/sendnreceive/infra/cache"
	"github.com/amirasaad/sendnreceive/infra/initializer"
	"github.com/amirasaad/sendnreceive/infra/provider/cachedrate"
	"github.com/amirasaad/sendnreceive/infra/provider/exchangerateapi"
	"github.com/amirasaad/sendnreceive/infra/provider/frankfurter"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/provider"
	"github.com/amirasaad/sendnreceive/pkg/service/quote"
	"github.com/amirasaad/sendnreceive/webapi/mockbackend"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	logger := initializer.SetupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := infracache.NewMemoryCache()
	defer c.Close() //nolint:errcheck

	fx := frankfurter.New(cfg.RateProviders.Quote, logger)
	fiat := exchangerateapi.New(cfg.RateProviders.Fiat, logger)
	rates := cachedrate.New(provider.FallbackRateFetcher{fx, fiat}, c, cfg.RateRefresh.CacheTTL, cfg.RateRefresh.Prefix, logger)
	app := mockbackend.New(cfg.MockBackend, quote.New(rates, logger), logger)

	addr := ":" + strconv.Itoa(cfg.MockBackend.Port)
	logger.Info("Starting mock backend", "address", addr, "api_key_required", cfg.MockBackend.ApiKey != "")

	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
