package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/sendnreceive/infra/initializer"
	"github.com/amirasaad/sendnreceive/pkg/app"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/webapi"
	log "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fiberApp, a, cleanup, err := newServer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := a.Deps.Logger

	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("failed to start rate source: %w", err)
	}
	defer a.Close()

	addr := cfg.Server.Addr()
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
		"demo_mode", cfg.Conversion.DemoMode,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- fiberApp.Listen(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return fiberApp.ShutdownWithContext(shutdownCtx)
}

// newServer wires dependencies, services and routes.
func newServer(cfg *config.App) (*fiber.App, *app.App, func(), error) {
	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	a := app.New(deps, cfg)
	return webapi.SetupApp(a), a, cleanup, nil
}
