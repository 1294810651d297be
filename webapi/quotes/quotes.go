// Package quotes exposes the quote engine and the debounced previewer.
package quotes

import (
	"strings"

	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/service/quote"
	"github.com/amirasaad/sendnreceive/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// QuoteQuery are the parameters of GET /quotes.
type QuoteQuery struct {
	Base   string  `query:"base" validate:"required,len=3,alpha"`
	Amount float64 `query:"amount" validate:"required,gt=0"`
}

// PreviewRequest changes the previewed currency, amount, or both.
type PreviewRequest struct {
	Base   string   `json:"base" validate:"omitempty,len=3,alpha"`
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"`
}

// PreviewAccepted is returned when a preview request was scheduled.
type PreviewAccepted struct {
	Seq uint64 `json:"seq"`
}

// Routes registers the quote endpoints.
func Routes(app *fiber.App, engine *quote.Engine, previewer *quote.Previewer) {
	group := app.Group("/quotes")
	group.Get("/", GetQuote(engine))
	group.Get("/history", GetHistory(engine))
	group.Post("/preview", SubmitPreview(previewer))
	group.Get("/preview", GetPreview(previewer))
}

// GetQuote returns a fresh quote for base into USD, or 1:1 for USD and EUR.
func GetQuote(engine quote.Quoter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := common.BindAndValidateQuery[QuoteQuery](c)
		if err != nil {
			return nil
		}
		res, err := engine.GetQuote(c.UserContext(), currency.Code(strings.ToUpper(q.Base)), q.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Quote failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Quote fetched successfully", res)
	}
}

// GetHistory returns the most recent provider rates.
func GetHistory(engine *quote.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rate history fetched successfully", engine.History())
	}
}

// SubmitPreview schedules a debounced preview. Only the latest submission
// is ever applied.
func SubmitPreview(previewer *quote.Previewer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := common.BindAndValidate[PreviewRequest](c)
		if err != nil {
			return nil
		}
		var seq uint64
		switch {
		case req.Base != "" && req.Amount != nil:
			seq = previewer.Submit(currency.Code(strings.ToUpper(req.Base)), *req.Amount)
		case req.Base != "":
			seq = previewer.OnCurrencyChanged(currency.Code(strings.ToUpper(req.Base)))
		case req.Amount != nil:
			seq = previewer.OnAmountChanged(*req.Amount)
		default:
			return common.ProblemDetailsJSON(c, "Validation failed", nil,
				"base or amount is required", fiber.StatusBadRequest)
		}
		if seq == 0 {
			return common.ProblemDetailsJSON(c, "Preview unavailable", nil,
				"previewer is shut down", fiber.StatusServiceUnavailable)
		}
		return common.SuccessResponseJSON(c, fiber.StatusAccepted, "Preview scheduled", PreviewAccepted{Seq: seq})
	}
}

// GetPreview returns the latest applied preview.
func GetPreview(previewer *quote.Previewer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pv, ok := previewer.Latest()
		if !ok {
			return common.ProblemDetailsJSON(c, "No preview yet", nil,
				"no preview has completed", fiber.StatusNotFound)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Preview fetched successfully", pv)
	}
}
