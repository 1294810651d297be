// Package audit subscribes to conversion and rate events and records them
// in the application log and the conversion ledger.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/sendnreceive/pkg/domain/events"
	"github.com/amirasaad/sendnreceive/pkg/eventbus"
	"github.com/amirasaad/sendnreceive/pkg/ledger"
)

// HandleConversionCompleted logs completed conversions.
func HandleConversionCompleted(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With(
			"handler", "audit.HandleConversionCompleted",
			"event_type", e.Type(),
		)
		cc, ok := e.(*events.ConversionCompleted)
		if !ok {
			log.Error("Skipping unexpected event type", "event", e)
			return nil
		}
		log.Info("✅ Conversion completed",
			"currency", cc.Currency,
			"amount", cc.Amount,
			"stablecoin", cc.Stablecoin,
			"amount_to_mint", cc.AmountToMint,
			"user_id", cc.UserID,
			"transaction_id", cc.TransactionID,
			"authoritative", cc.Authoritative,
		)
		return nil
	}
}

// HandleConversionFailed logs failed conversions.
func HandleConversionFailed(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With(
			"handler", "audit.HandleConversionFailed",
			"event_type", e.Type(),
		)
		cf, ok := e.(*events.ConversionFailed)
		if !ok {
			log.Error("Skipping unexpected event type", "event", e)
			return nil
		}
		log.Warn("❌ Conversion failed",
			"currency", cf.Currency,
			"amount", cf.Amount,
			"kind", cf.Kind,
			"reason", cf.Reason,
		)
		return nil
	}
}

// HandleRatesRefreshed logs successful refreshes.
func HandleRatesRefreshed(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		rr, ok := e.(*events.RatesRefreshed)
		if !ok {
			logger.Error("Skipping unexpected event type", "event", e)
			return nil
		}
		logger.Debug("Rates refreshed", "fiat_count", rr.FiatCount, "status", rr.Status)
		return nil
	}
}

// HandleRatesRefreshFailed tells the user, through the ledger event log,
// that the rates shown are no longer live.
func HandleRatesRefreshFailed(l *ledger.Ledger, logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With(
			"handler", "audit.HandleRatesRefreshFailed",
			"event_type", e.Type(),
		)
		rf, ok := e.(*events.RatesRefreshFailed)
		if !ok {
			log.Error("Skipping unexpected event type", "event", e)
			return nil
		}
		log.Warn("Rate refresh failed", "status", rf.Status, "reason", rf.Reason)
		l.AppendEvent(
			fmt.Sprintf("Rate refresh failed, showing %s rates: %s", rf.Status, rf.Reason),
			ledger.EventInfo,
		)
		return nil
	}
}
