// Package app wires providers, services and the event bus together.
package app

import (
	"github.com/amirasaad/sendnreceive/pkg/domain/events"
	"github.com/amirasaad/sendnreceive/pkg/handler/audit"
	handlercommon "github.com/amirasaad/sendnreceive/pkg/handler/common"
)

// setupEventBus registers the audit handlers. Rate refresh successes are
// only logged, so redelivery is harmless and they skip deduplication.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	logger := a.Deps.Logger.With("component", "audit")

	bus.Register(
		events.EventTypeConversionCompleted.String(),
		handlercommon.Deduplicate("HandleConversionCompleted", handlercommon.NewSeenSet(),
			audit.HandleConversionCompleted(logger), logger),
	)
	bus.Register(
		events.EventTypeConversionFailed.String(),
		handlercommon.Deduplicate("HandleConversionFailed", handlercommon.NewSeenSet(),
			audit.HandleConversionFailed(logger), logger),
	)
	bus.Register(
		events.EventTypeRatesRefreshed.String(),
		audit.HandleRatesRefreshed(logger),
	)
	bus.Register(
		events.EventTypeRatesRefreshFailed.String(),
		handlercommon.Deduplicate("HandleRatesRefreshFailed", handlercommon.NewSeenSet(),
			audit.HandleRatesRefreshFailed(a.Ledger, logger), logger),
	)
}
