// Package rates exposes the rate snapshot over HTTP.
package rates

import (
	"errors"
	"strings"

	"github.com/amirasaad/sendnreceive/pkg/currency"
	ratesvc "github.com/amirasaad/sendnreceive/pkg/service/rates"
	"github.com/amirasaad/sendnreceive/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// ConvertQuery are the calculator parameters of GET /rates/convert.
type ConvertQuery struct {
	From   string  `query:"from" validate:"required,len=3,alpha"`
	To     string  `query:"to" validate:"required,len=3,alpha"`
	Amount float64 `query:"amount" validate:"required,gt=0"`
}

// Routes registers the rate endpoints.
func Routes(app *fiber.App, source *ratesvc.Source) {
	group := app.Group("/rates")
	group.Get("/", GetRates(source))
	group.Post("/refresh", RefreshRates(source))
	group.Get("/convert", ConvertRates(source))
}

// GetRates returns the current snapshot.
func GetRates(source *ratesvc.Source) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rates fetched successfully", source.Snapshot())
	}
}

// RefreshRates forces a refresh. When providers fail the previous snapshot
// is still returned, with a message saying so.
func RefreshRates(source *ratesvc.Source) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := source.Refresh(c.UserContext())
		if err != nil {
			if errors.Is(err, ratesvc.ErrUsingCachedRates) {
				return common.SuccessResponseJSON(c, fiber.StatusOK, "Using cached rates: "+err.Error(), snap)
			}
			return common.ProblemDetailsJSON(c, "Failed to refresh rates", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rates refreshed successfully", snap)
	}
}

// ConvertRates converts an amount between two fiat currencies using the snapshot.
func ConvertRates(source *ratesvc.Source) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := common.BindAndValidateQuery[ConvertQuery](c)
		if err != nil {
			return nil
		}
		quote, err := source.Snapshot().Convert(
			currency.Code(strings.ToUpper(q.From)),
			currency.Code(strings.ToUpper(q.To)),
			q.Amount,
		)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Conversion failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Converted successfully", quote)
	}
}
