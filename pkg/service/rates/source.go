// Package rates keeps the fiat and stablecoin rate snapshot fresh.
package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/sendnreceive/pkg/cache"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/domain"
	"github.com/amirasaad/sendnreceive/pkg/domain/events"
	"github.com/amirasaad/sendnreceive/pkg/eventbus"
	"github.com/amirasaad/sendnreceive/pkg/provider"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ---- Errors ----

// ErrUsingCachedRates is returned when a refresh failed and the previous
// snapshot is still being served.
var ErrUsingCachedRates = errors.New("rate refresh failed, using cached rates")

// ---- Constants ----

const (
	snapshotKey    = "snapshot"
	refreshKey     = "refresh"
	refreshTimeout = 30 * time.Second
)

// ---- Service ----

// Source fetches rates from the fiat and stablecoin providers and serves the
// latest snapshot.
type Source struct {
	fiat   provider.FiatRateFetcher
	stable provider.StablecoinFetcher
	cache  cache.Cache
	bus    eventbus.Bus
	cfg    config.RateRefresh
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot

	group   singleflight.Group
	cron    *cron.Cron
	cronMu  sync.Mutex
	baseCtx context.Context
}

// New creates a Source serving the default snapshot until the first refresh.
func New(
	fiat provider.FiatRateFetcher,
	stable provider.StablecoinFetcher,
	cfg *config.RateRefresh,
	logger *slog.Logger,
) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	c := config.RateRefresh{Schedule: "@every 5m", CacheTTL: 15 * time.Minute}
	if cfg != nil {
		c = *cfg
	}
	return &Source{
		fiat:     fiat,
		stable:   stable,
		cfg:      c,
		logger:   logger.With("component", "rate-source"),
		now:      time.Now,
		snapshot: DefaultSnapshot(time.Now().UTC()),
	}
}

// WithCache persists every live snapshot to c.
func (s *Source) WithCache(c cache.Cache) *Source {
	s.cache = c
	return s
}

// WithEventBus publishes refresh outcomes on bus.
func (s *Source) WithEventBus(bus eventbus.Bus) *Source {
	s.bus = bus
	return s
}

// Snapshot returns a copy of the current snapshot.
func (s *Source) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

// FetchTraditionalRates fetches fiat rates keyed by USD. Failures return a nil map.
func (s *Source) FetchTraditionalRates(ctx context.Context) (map[currency.Code]float64, error) {
	rates, err := s.fiat.FetchRates(ctx, currency.USD)
	if err != nil {
		return nil, fmt.Errorf("fetch traditional rates: %w", err)
	}
	rates[currency.USD] = 1
	return rates, nil
}

// FetchStablecoinRates fetches stablecoin prices.
func (s *Source) FetchStablecoinRates(ctx context.Context) (provider.StablecoinPrices, error) {
	prices, err := s.stable.FetchPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch stablecoin rates: %w", err)
	}
	return prices, nil
}

// FetchAllRates fetches both tables concurrently. The snapshot is replaced
// only when both succeed; otherwise the previous one is kept, marked cached
// unless it only ever held defaults, and ErrUsingCachedRates is returned.
func (s *Source) FetchAllRates(ctx context.Context) (Snapshot, error) {
	var (
		fiat   map[currency.Code]float64
		prices provider.StablecoinPrices
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fiat, err = s.FetchTraditionalRates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		prices, err = s.FetchStablecoinRates(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		snap := s.markStale()
		s.logger.Warn("Rate refresh failed, keeping previous snapshot",
			"status", snap.Status, "updated_at", snap.UpdatedAt, "error", err)
		s.emit(ctx, events.NewRatesRefreshFailed(string(snap.Status), err.Error()))
		return snap, fmt.Errorf("%w: %w", ErrUsingCachedRates, err)
	}

	snap := Snapshot{
		Fiat:        fiat,
		Stablecoins: prices,
		Status:      domain.SourceLive,
		UpdatedAt:   s.now().UTC(),
	}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.Info("Rates refreshed", "fiat", len(fiat), "stablecoins", len(prices))
	s.emit(ctx, events.NewRatesRefreshed(len(fiat), string(snap.Status)))
	return snap.clone(), nil
}

// Refresh runs FetchAllRates; concurrent callers share one fetch.
func (s *Source) Refresh(ctx context.Context) (Snapshot, error) {
	v, err, shared := s.group.Do(refreshKey, func() (any, error) {
		return s.FetchAllRates(ctx)
	})
	if shared {
		s.logger.Debug("Joined in-flight rate refresh")
	}
	snap, _ := v.(Snapshot)
	return snap.clone(), err
}

// Warm loads the last persisted snapshot as cached when nothing live has
// been fetched yet. It reports whether a snapshot was loaded.
func (s *Source) Warm(ctx context.Context) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	var snap Snapshot
	found, err := s.cache.Get(ctx, s.cfg.Prefix+snapshotKey, &snap)
	if err != nil {
		return false, fmt.Errorf("warm rate snapshot: %w", err)
	}
	if !found || len(snap.Fiat) == 0 {
		return false, nil
	}
	snap.Status = domain.SourceCached

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Status == domain.SourceLive {
		return false, nil
	}
	s.snapshot = snap
	s.logger.Info("Rate snapshot warmed from cache", "updated_at", snap.UpdatedAt)
	return true, nil
}

// Start warms the snapshot, performs an initial refresh and schedules
// further refreshes. It returns an error only for an invalid schedule.
func (s *Source) Start(ctx context.Context) error {
	s.cronMu.Lock()
	defer s.cronMu.Unlock()
	if s.cron != nil {
		return nil
	}

	if _, err := s.Warm(ctx); err != nil {
		s.logger.Warn("Could not warm rate snapshot", "error", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Schedule, s.scheduledRefresh); err != nil {
		return fmt.Errorf("failed to schedule rate refresh %q: %w", s.cfg.Schedule, err)
	}
	s.baseCtx = context.WithoutCancel(ctx)
	s.cron = c

	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("Initial rate refresh failed", "error", err)
	}
	c.Start()
	s.logger.Info("Rate refresh scheduled", "schedule", s.cfg.Schedule)
	return nil
}

// Stop stops the schedule and waits for a running refresh to finish.
func (s *Source) Stop() {
	s.cronMu.Lock()
	c := s.cron
	s.cron = nil
	s.cronMu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("Rate refresh stopped")
}

func (s *Source) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(s.baseCtx, refreshTimeout)
	defer cancel()
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("Scheduled rate refresh failed", "error", err)
	}
}

// ---- Helper Functions ----

func (s *Source) markStale() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Status == domain.SourceLive {
		s.snapshot.Status = domain.SourceCached
	}
	return s.snapshot.clone()
}

func (s *Source) persist(ctx context.Context, snap Snapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.cfg.Prefix+snapshotKey, snap, 0); err != nil {
		s.logger.Error("Failed to persist rate snapshot", "error", err)
	}
}

func (s *Source) emit(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(ctx, e); err != nil {
		s.logger.Error("Failed to publish rate event", "type", e.Type(), "error", err)
	}
}
