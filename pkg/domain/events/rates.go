package events

// RatesRefreshed is emitted after both rate providers answered.
type RatesRefreshed struct {
	Meta
	FiatCount int    `json:"fiatCount"`
	Status    string `json:"status"`
}

// RatesRefreshFailed is emitted when a refresh fell back to previous rates.
type RatesRefreshFailed struct {
	Meta
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// NewRatesRefreshed builds a RatesRefreshed event.
func NewRatesRefreshed(fiatCount int, status string) *RatesRefreshed {
	return &RatesRefreshed{Meta: newMeta(), FiatCount: fiatCount, Status: status}
}

// NewRatesRefreshFailed builds a RatesRefreshFailed event.
func NewRatesRefreshFailed(status, reason string) *RatesRefreshFailed {
	return &RatesRefreshFailed{Meta: newMeta(), Status: status, Reason: reason}
}

func (e RatesRefreshed) Type() string     { return EventTypeRatesRefreshed.String() }
func (e RatesRefreshFailed) Type() string { return EventTypeRatesRefreshFailed.String() }
