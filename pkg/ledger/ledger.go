// Package ledger keeps in-memory stablecoin totals and the conversion event log.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultDisplayEvents is how many events RecentEvents returns by default.
const DefaultDisplayEvents = 5

var (
	ErrNotStablecoin = errors.New("ledger only holds USDC and EURC")
	ErrInvalidCredit = errors.New("credit must be a non-negative finite number")
)

// EventType classifies a ledger event.
type EventType string

const (
	EventInfo    EventType = "info"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

// Event is an immutable entry of the conversion log.
type Event struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Balances are the running stablecoin totals.
type Balances struct {
	USDC decimal.Decimal `json:"usdc"`
	EURC decimal.Decimal `json:"eurc"`
}

// Ledger is safe for concurrent use. Totals only grow.
type Ledger struct {
	mu       sync.RWMutex
	balances map[currency.Code]decimal.Decimal
	events   []Event
	display  int
	now      func() time.Time
}

// New creates an empty Ledger; display is the RecentEvents window.
func New(display int) *Ledger {
	if display <= 0 {
		display = DefaultDisplayEvents
	}
	return &Ledger{
		balances: map[currency.Code]decimal.Decimal{
			currency.USDC: decimal.Zero,
			currency.EURC: decimal.Zero,
		},
		display: display,
		now:     time.Now,
	}
}

// Credit adds amount to coin. Only USDC and EURC are accepted.
func (l *Ledger) Credit(coin currency.Code, amount float64) error {
	if !coin.IsStablecoin() {
		return fmt.Errorf("%w: %s", ErrNotStablecoin, coin)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCredit, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[coin] = l.balances[coin].Add(decimal.NewFromFloat(amount))
	return nil
}

// AppendEvent records a timestamped event and returns it.
func (l *Ledger) AppendEvent(message string, typ EventType) Event {
	e := Event{
		ID:        uuid.NewString(),
		Message:   message,
		Type:      typ,
		Timestamp: l.now().UTC(),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return e
}

// Balances returns a copy of the totals.
func (l *Ledger) Balances() Balances {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Balances{
		USDC: l.balances[currency.USDC],
		EURC: l.balances[currency.EURC],
	}
}

// Balance returns the total for coin as a float rounded to cents.
func (l *Ledger) Balance(coin currency.Code) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, _ := l.balances[coin].Round(2).Float64()
	return f
}

// Events returns every event, oldest first.
func (l *Ledger) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// RecentEvents returns the last display events, oldest first.
func (l *Ledger) RecentEvents() []Event {
	return l.LastEvents(l.display)
}

// LastEvents returns the last n events, oldest first.
func (l *Ledger) LastEvents(n int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return []Event{}
	}
	start := max(len(l.events)-n, 0)
	out := make([]Event, len(l.events)-start)
	copy(out, l.events[start:])
	return out
}

// Len returns the number of events.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
