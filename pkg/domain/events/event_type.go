package events

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	// Conversion events
	EventTypeConversionRequested EventType = "Conversion.Requested"
	EventTypeConversionCompleted EventType = "Conversion.Completed"
	EventTypeConversionFailed    EventType = "Conversion.Failed"

	// Rate events
	EventTypeRatesRefreshed     EventType = "Rates.Refreshed"
	EventTypeRatesRefreshFailed EventType = "Rates.RefreshFailed"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}
