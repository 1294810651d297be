package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is implemented by everything published on the event bus.
type Event interface {
	Type() string
}

// Meta carries the fields shared by all events.
type Meta struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventID returns the unique id of the event.
func (m Meta) EventID() string { return m.ID.String() }

func newMeta() Meta {
	return Meta{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

// EventTypes maps type names to constructors, used when decoding events
// coming back from an external transport.
var EventTypes = map[string]func() Event{
	EventTypeConversionRequested.String(): func() Event { return &ConversionRequested{} },
	EventTypeConversionCompleted.String(): func() Event { return &ConversionCompleted{} },
	EventTypeConversionFailed.String():    func() Event { return &ConversionFailed{} },
	EventTypeRatesRefreshed.String():      func() Event { return &RatesRefreshed{} },
	EventTypeRatesRefreshFailed.String():  func() Event { return &RatesRefreshFailed{} },
}
