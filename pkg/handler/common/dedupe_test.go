package common

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/amirasaad/sendnreceive/pkg/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type anonymousEvent struct{}

func (anonymousEvent) Type() string { return "test.event" }

func TestSeenSet(t *testing.T) {
	s := NewSeenSet()
	assert.False(t, s.Has("k"))
	s.Mark("k")
	assert.True(t, s.Has("k"))
	s.Forget("k")
	assert.False(t, s.Has("k"))
}

func TestEventID(t *testing.T) {
	e := events.NewRatesRefreshed(5, "live")
	assert.Equal(t, e.ID.String(), EventID(e))
	assert.Empty(t, EventID(anonymousEvent{}))
}

func TestDeduplicate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	counting := func(calls *atomic.Int32, failFirst error) func(context.Context, events.Event) error {
		return func(context.Context, events.Event) error {
			if calls.Add(1) == 1 && failFirst != nil {
				return failFirst
			}
			return nil
		}
	}

	tests := []struct {
		name      string
		event     events.Event
		failFirst error
		wantCalls int32
		wantSeen  bool
	}{
		{name: "events without id always run", event: anonymousEvent{}, wantCalls: 2},
		{name: "redelivery is dropped", event: events.NewConversionFailed("USD", 1, "validation", "bad amount"), wantCalls: 1, wantSeen: true},
		{name: "failed attempt is retried", event: events.NewRatesRefreshFailed("cached", "timeout"), failFirst: errors.New("boom"), wantCalls: 2, wantSeen: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			seen := NewSeenSet()
			h := Deduplicate("test", seen, counting(&calls, tt.failFirst), logger)

			first := h(ctx, tt.event)
			if tt.failFirst != nil {
				require.ErrorIs(t, first, tt.failFirst)
				assert.False(t, seen.Has(EventID(tt.event)))
			} else {
				require.NoError(t, first)
			}
			require.NoError(t, h(ctx, tt.event))
			assert.Equal(t, tt.wantCalls, calls.Load())
			if id := EventID(tt.event); id != "" {
				assert.Equal(t, tt.wantSeen, seen.Has(id))
			}
		})
	}
}

func TestDeduplicate_ConcurrentDeliveriesRunOnce(t *testing.T) {
	var calls atomic.Int32
	h := Deduplicate("test", NewSeenSet(), func(context.Context, events.Event) error {
		calls.Add(1)
		return nil
	}, nil)
	e := events.NewRatesRefreshed(3, "live")

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h(context.Background(), e)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}
