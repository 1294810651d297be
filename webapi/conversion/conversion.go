// Package conversion exposes auto-conversion and the ledger over HTTP.
package conversion

import (
	"strings"

	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/domain"
	"github.com/amirasaad/sendnreceive/pkg/ledger"
	conversionsvc "github.com/amirasaad/sendnreceive/pkg/service/conversion"
	"github.com/amirasaad/sendnreceive/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// ConversionRequest is the body of POST /conversions.
type ConversionRequest struct {
	Currency      string  `json:"currency" validate:"required,len=3,alpha"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"omitempty,max=32"`
}

// EventsQuery selects how many ledger events to return.
type EventsQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// LedgerDTO is the ledger summary.
type LedgerDTO struct {
	Mode     string         `json:"mode"`
	Balances ledger.Balances `json:"balances"`
	Recent   []ledger.Event `json:"recentEvents"`
}

// Routes registers the conversion and ledger endpoints.
func Routes(app *fiber.App, orchestrator *conversionsvc.Orchestrator) {
	app.Post("/conversions", PerformConversion(orchestrator))
	app.Get("/ledger", GetLedger(orchestrator))
	app.Get("/ledger/events", GetLedgerEvents(orchestrator.Ledger()))
}

// PerformConversion runs one auto-conversion. Failures are reported as
// problem details carrying the full result.
func PerformConversion(orchestrator *conversionsvc.Orchestrator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := common.BindAndValidate[ConversionRequest](c)
		if err != nil {
			return nil
		}
		method, err := domain.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid payment method", err, fiber.StatusBadRequest)
		}

		res := orchestrator.PerformAutoConversion(
			c.UserContext(),
			currency.Code(strings.ToUpper(req.Currency)),
			req.Amount,
			method,
		)
		if !res.Success {
			return common.ProblemDetailsJSON(c, "Conversion failed", res.Err, res)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Conversion completed", res)
	}
}

// GetLedger returns totals and the recent events.
func GetLedger(orchestrator *conversionsvc.Orchestrator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := orchestrator.Ledger()
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Ledger fetched successfully", LedgerDTO{
			Mode:     orchestrator.Mode(),
			Balances: l.Balances(),
			Recent:   l.RecentEvents(),
		})
	}
}

// GetLedgerEvents returns the whole event log, or the last limit events.
func GetLedgerEvents(l *ledger.Ledger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := common.BindAndValidateQuery[EventsQuery](c)
		if err != nil {
			return nil
		}
		events := l.Events()
		if q.Limit > 0 {
			events = l.LastEvents(q.Limit)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Events fetched successfully", events)
	}
}
