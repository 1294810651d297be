// Package webapi provides the HTTP API of the conversion core.
// It is organized into sub-packages:
// - rates: rate snapshot, refresh and calculator endpoints
// - quotes: quote and debounced preview endpoints
// - conversion: auto-conversion and ledger endpoints
// - mockbackend: a stand-in conversion backend for local runs and tests
package webapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/app"
	"github.com/amirasaad/sendnreceive/webapi/common"
	conversionweb "github.com/amirasaad/sendnreceive/webapi/conversion"
	quotesweb "github.com/amirasaad/sendnreceive/webapi/quotes"
	ratesweb "github.com/amirasaad/sendnreceive/webapi/rates"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const healthTimeout = 5 * time.Second

// HealthDTO reports provider reachability.
type HealthDTO struct {
	Status    string            `json:"status"`
	Mode      string            `json:"mode"`
	Providers map[string]string `json:"providers"`
}

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "sendnreceive",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	if rl := a.Config.RateLimit; rl != nil && rl.MaxRequests > 0 {
		// Uses X-Forwarded-For header when behind a proxy
		fiberApp.Use(limiter.New(limiter.Config{
			Max:        rl.MaxRequests,
			Expiration: rl.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
					if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
						return strings.TrimSpace(forwardedFor[:commaIndex])
					}
					return strings.TrimSpace(forwardedFor)
				}
				if realIP := c.Get("X-Real-IP"); realIP != "" {
					return realIP
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("SendNReceive API is running! 🚀")
	})
	fiberApp.Get("/health", Health(a))

	ratesweb.Routes(fiberApp, a.RateSource)
	quotesweb.Routes(fiberApp, a.QuoteEngine, a.Previewer)
	conversionweb.Routes(fiberApp, a.Orchestrator)
	return fiberApp
}

// Health checks every provider. It answers 200 even when some are down so
// that demo mode stays usable; the body says which ones failed.
func Health(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		dto := HealthDTO{
			Status:    "ok",
			Mode:      a.Orchestrator.Mode(),
			Providers: map[string]string{},
		}
		for name, err := range a.HealthCheck(ctx) {
			if err != nil {
				dto.Status = "degraded"
				dto.Providers[name] = err.Error()
				continue
			}
			dto.Providers[name] = "ok"
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Health checked", dto)
	}
}
