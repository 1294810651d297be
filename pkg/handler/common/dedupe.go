// Package common holds middleware shared by event handlers.
package common

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/sendnreceive/pkg/domain/events"
	"github.com/amirasaad/sendnreceive/pkg/eventbus"
	"golang.org/x/sync/singleflight"
)

// EventID returns the metadata id of e, or "" for events that carry none.
func EventID(e events.Event) string {
	if identified, ok := e.(interface{ EventID() string }); ok {
		return identified.EventID()
	}
	return ""
}

// SeenSet records the ids of events a handler has completed.
type SeenSet struct {
	done  sync.Map
	group singleflight.Group
}

func NewSeenSet() *SeenSet {
	return &SeenSet{}
}

func (s *SeenSet) Has(id string) bool {
	_, ok := s.done.Load(id)
	return ok
}

func (s *SeenSet) Mark(id string) {
	s.done.Store(id, struct{}{})
}

func (s *SeenSet) Forget(id string) {
	s.done.Delete(id)
}

// once runs fn unless id is done. Callers racing on one id share a single
// run of fn; id is marked only when fn succeeds.
func (s *SeenSet) once(id string, fn func() error) (skipped bool, err error) {
	v, err, _ := s.group.Do(id, func() (any, error) {
		if s.Has(id) {
			return true, nil
		}
		if err := fn(); err != nil {
			return false, err
		}
		s.Mark(id)
		return false, nil
	})
	skipped, _ = v.(bool)
	return skipped, err
}

// Deduplicate drops redelivered events. The Redis Streams bus redelivers
// pending entries after a consumer restart, so audit handlers see some
// events twice.
func Deduplicate(name string, seen *SeenSet, h eventbus.HandlerFunc, logger *slog.Logger) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e events.Event) error {
		id := EventID(e)
		if id == "" {
			return h(ctx, e)
		}
		skipped, err := seen.once(id, func() error { return h(ctx, e) })
		if skipped {
			logger.Debug("Duplicate event dropped", "handler", name, "event_type", e.Type(), "event_id", id)
		}
		return err
	}
}
