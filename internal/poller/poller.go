package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/coinboard/coinboard/internal/model"
)

// QuoteSource fetches the provider's current ranked listing.
type QuoteSource interface {
	Listings(ctx context.Context, start, limit int, convert string) ([]model.Coin, error)
}

// CoinStore persists snapshots and price history.
type CoinStore interface {
	UpsertCoin(ctx context.Context, coin model.Coin) error
	AppendPrice(ctx context.Context, point model.PricePoint) error
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Cycle period (default: 70s)
	Limit    int           // Ranked window size per fetch (default: 30)
	Convert  string        // Quote currency (default: USD)
	Timeout  time.Duration // Per-fetch timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 70 * time.Second,
		Limit:    30,
		Convert:  "USD",
		Timeout:  10 * time.Second,
	}
}

// CycleReport summarizes one ingestion cycle.
type CycleReport struct {
	CycleID   uuid.UUID
	StartedAt time.Time
	Duration  time.Duration
	Total     int   // Coins in the fetched batch
	Processed int   // Coins persisted (snapshot + history point)
	Failed    int   // Coins skipped after a store error
	Err       error // Set only when the fetch itself failed
}

// Poller periodically ingests the provider's ranked listing into the store.
//
// All cycles run on a single loop goroutine, so at most one cycle is ever in
// flight; ticks that arrive while a slow cycle is still running coalesce
// instead of overlapping.
type Poller struct {
	cfg    Config
	source QuoteSource
	store  CoinStore
	logger *slog.Logger

	started atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu   sync.Mutex
	last *CycleReport
}

// New creates a new Poller.
func New(cfg Config, source QuoteSource, store CoinStore, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:    cfg,
		source: source,
		store:  store,
		logger: logger,
	}
}

// Start runs one cycle immediately, then one per interval until Stop.
// Starting an already-running poller is an error, never a second loop.
func (p *Poller) Start(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return errors.New("poller already started")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started",
		"interval", p.cfg.Interval,
		"limit", p.cfg.Limit,
		"convert", p.cfg.Convert,
	)

	return nil
}

// Stop cancels future cycles. A cycle already in progress runs to
// completion; Stop waits for it up to the context deadline.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastReport returns the most recent cycle report, if any cycle has run.
func (p *Poller) LastReport() (CycleReport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return CycleReport{}, false
	}
	return *p.last, true
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Cold-start fill: poll immediately on start.
	p.cycle()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.cycle()
		}
	}
}

// cycle runs one ingestion pass and records its report. The pass runs on a
// context detached from the stop signal: Stop cancels future cycles, but a
// cycle already underway finishes its writes undisturbed.
func (p *Poller) cycle() {
	report := p.RunOnce(context.WithoutCancel(p.ctx))

	p.mu.Lock()
	p.last = &report
	p.mu.Unlock()
}

// RunOnce performs one fetch-and-merge pass. A fetch failure aborts the
// cycle before any write; a store failure on one coin is logged and skipped
// while the rest of the batch proceeds.
func (p *Poller) RunOnce(ctx context.Context) CycleReport {
	report := CycleReport{
		CycleID:   uuid.New(),
		StartedAt: time.Now().UTC(),
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	coins, err := p.source.Listings(fetchCtx, 1, p.cfg.Limit, p.cfg.Convert)
	cancel()
	if err != nil {
		report.Err = err
		report.Duration = time.Since(report.StartedAt)
		p.logger.Error("fetch failed, cycle aborted",
			"cycle_id", report.CycleID,
			"error", err,
		)
		return report
	}

	report.Total = len(coins)
	for _, coin := range coins {
		if err := p.ingest(ctx, coin, report.StartedAt); err != nil {
			p.logger.Warn("failed to persist coin",
				"cycle_id", report.CycleID,
				"coin", coin.Slug,
				"error", err,
			)
			report.Failed++
			continue
		}
		report.Processed++
	}

	report.Duration = time.Since(report.StartedAt)
	p.logger.Info("ingestion cycle complete",
		"cycle_id", report.CycleID,
		"total", report.Total,
		"processed", report.Processed,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report
}

// ingest upserts one coin and appends its history point. The append only
// happens after the upsert succeeded.
func (p *Poller) ingest(ctx context.Context, coin model.Coin, ts time.Time) error {
	if err := p.store.UpsertCoin(ctx, coin); err != nil {
		return err
	}
	return p.store.AppendPrice(ctx, model.PricePoint{
		CoinID:    coin.ID,
		Price:     coin.Price,
		Timestamp: ts,
	})
}
