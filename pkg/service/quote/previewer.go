package quote

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/domain"
)

// DefaultDebounce is used when no debounce window is configured.
const DefaultDebounce = 500 * time.Millisecond

// Preview is the outcome of one debounced quote request.
type Preview struct {
	Seq    uint64        `json:"seq"`
	Base   currency.Code `json:"base"`
	Amount float64       `json:"amount"`
	Quote  *domain.Quote `json:"quote,omitempty"`
	Err    error         `json:"-"`
	Error  string        `json:"error,omitempty"`
	At     time.Time     `json:"at"`
}

// Previewer debounces quote requests. Every Submit supersedes earlier ones:
// pending timers are dropped, in-flight requests are cancelled and only the
// result for the latest sequence number is applied.
type Previewer struct {
	quoter   Quoter
	debounce time.Duration
	logger   *slog.Logger

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	seq      uint64
	timer    *time.Timer
	inflight context.CancelFunc
	base     currency.Code
	amount   float64
	latest   *Preview
	onApply  func(Preview)
	closed   bool
}

// NewPreviewer creates a Previewer tracking USD as the initial currency.
func NewPreviewer(q Quoter, debounce time.Duration, logger *slog.Logger) *Previewer {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Previewer{
		quoter:   q,
		debounce: debounce,
		logger:   logger.With("component", "quote-previewer"),
		ctx:      ctx,
		stop:     stop,
		base:     currency.USD,
	}
}

// OnApply registers fn to be called with every applied preview.
func (p *Previewer) OnApply(fn func(Preview)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onApply = fn
}

// Submit schedules a quote for (base, amount) after the debounce window and
// returns its sequence number. It returns 0 once the previewer is closed.
func (p *Previewer) Submit(base currency.Code, amount float64) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitLocked(base, amount)
}

// OnAmountChanged re-quotes the tracked currency with a new amount.
func (p *Previewer) OnAmountChanged(amount float64) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitLocked(p.base, amount)
}

// OnCurrencyChanged re-quotes the tracked amount in a new currency.
func (p *Previewer) OnCurrencyChanged(base currency.Code) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitLocked(base, p.amount)
}

// Latest returns the most recently applied preview.
func (p *Previewer) Latest() (Preview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == nil {
		return Preview{}, false
	}
	return *p.latest, true
}

// Close drops pending work, cancels in-flight requests and waits for them.
func (p *Previewer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()

	p.stop()
	p.wg.Wait()
}

func (p *Previewer) submitLocked(base currency.Code, amount float64) uint64 {
	if p.closed {
		return 0
	}
	p.seq++
	seq := p.seq
	p.base, p.amount = base, amount

	if p.timer != nil {
		p.timer.Stop()
	}
	if p.inflight != nil {
		p.inflight()
		p.inflight = nil
	}
	p.timer = time.AfterFunc(p.debounce, func() { p.fire(seq, base, amount) })
	return seq
}

func (p *Previewer) fire(seq uint64, base currency.Code, amount float64) {
	p.mu.Lock()
	if p.closed || seq != p.seq {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.inflight = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	defer p.wg.Done()
	defer cancel()

	q, err := p.quoter.GetQuote(ctx, base, amount)
	p.apply(Preview{Seq: seq, Base: base, Amount: amount, Quote: q, Err: err, At: time.Now().UTC()})
}

func (p *Previewer) apply(pv Preview) {
	p.mu.Lock()
	if latest := p.seq; pv.Seq != latest {
		p.mu.Unlock()
		p.logger.Debug("Dropping stale preview", "seq", pv.Seq, "latest", latest)
		return
	}
	if pv.Err != nil {
		pv.Error = pv.Err.Error()
	}
	p.latest = &pv
	p.inflight = nil
	fn := p.onApply
	p.mu.Unlock()

	if fn != nil {
		fn(pv)
	}
}
