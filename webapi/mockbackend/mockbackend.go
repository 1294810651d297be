// Package mockbackend serves a stand-in conversion backend: the bearer
// protected configuration probe and the secret protected deposit webhook.
package mockbackend

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/sendnreceive/infra/provider/backend"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/service/quote"
	"github.com/amirasaad/sendnreceive/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
)

// ProbePath is the configuration endpoint used as connectivity probe.
const ProbePath = "/v1/configuration"

var (
	errUnauthorized = errors.New("invalid or missing credentials")
	errBadSecret    = errors.New("invalid webhook secret")
)

// ConfigurationDTO mimics a payment provider configuration answer.
type ConfigurationDTO struct {
	Payments struct {
		MasterWalletID string `json:"masterWalletId"`
	} `json:"payments"`
}

// New builds the mock backend app. Deposits are converted with quoter.
func New(cfg *config.MockBackend, quoter quote.Quoter, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mock-backend")

	app := fiber.New(fiber.Config{
		AppName: "sendnreceive-mock-backend",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	app.Use(recover.New())

	app.Get(ProbePath, Configuration(cfg.ApiKey))
	app.Post(backend.WebhookPath, DepositWebhook(cfg.WebhookSecret, quoter, logger))
	return app
}

// Configuration answers the probe. When apiKey is set the request must
// carry it as a bearer token.
func Configuration(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey != "" {
			token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				return common.ProblemDetailsJSON(c, "Unauthorized", errUnauthorized, fiber.StatusUnauthorized)
			}
		}
		var dto ConfigurationDTO
		dto.Payments.MasterWalletID = "1000000001"
		return c.JSON(fiber.Map{"data": dto})
	}
}

// DepositWebhook converts a deposit into its stablecoin.
func DepositWebhook(secret string, quoter quote.Quoter, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(backend.WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			logger.Warn("Rejected webhook call with bad secret", "ip", c.IP())
			return common.ProblemDetailsJSON(c, "Unauthorized", errBadSecret, fiber.StatusUnauthorized)
		}

		req, err := common.BindAndValidate[backend.DepositRequest](c)
		if err != nil {
			return nil
		}
		code := currency.Code(strings.ToUpper(req.Currency))
		q, err := quoter.GetQuote(c.UserContext(), code, req.Amount)
		if err != nil {
			logger.Error("Deposit conversion failed", "reference", req.Reference, "error", err)
			return common.ProblemDetailsJSON(c, "Conversion failed", err)
		}

		coin := currency.StablecoinFor(code)
		dep := &backend.Deposit{
			ID:        "dep_" + uuid.NewString(),
			Status:    backend.StatusConverted,
			From:      &backend.Money{Currency: string(code), Amount: req.Amount},
			To:        &backend.Money{Currency: string(coin), Amount: q.TargetAmount},
			Fx:        &backend.Fx{Rate: q.Rate, Timestamp: q.Timestamp},
			Reference: req.Reference,
			UserID:    req.UserID,
		}
		logger.Info("Deposit converted",
			"reference", req.Reference,
			"id", dep.ID,
			"to_currency", coin,
			"to_amount", q.TargetAmount,
		)
		return c.JSON(backend.WebhookResponse{Data: dep})
	}
}
