package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinboard/coinboard/internal/model"
	"github.com/coinboard/coinboard/internal/store"
)

// mockSource returns a fixed batch or a fixed error.
type mockSource struct {
	coins []model.Coin
	err   error
	calls atomic.Int32
}

func (m *mockSource) Listings(_ context.Context, _, _ int, _ string) ([]model.Coin, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.coins, nil
}

// slowStore delays every upsert and signals when the first one begins.
type slowStore struct {
	*store.Memory
	delay   time.Duration
	started chan struct{}
	once    sync.Once
}

func (s *slowStore) UpsertCoin(ctx context.Context, coin model.Coin) error {
	s.once.Do(func() { close(s.started) })
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.Memory.UpsertCoin(ctx, coin)
}

// failingStore rejects writes for one coin ID and delegates the rest.
type failingStore struct {
	*store.Memory
	failID string
}

func (f *failingStore) UpsertCoin(ctx context.Context, coin model.Coin) error {
	if coin.ID == f.failID {
		return errors.New("forced upsert failure")
	}
	return f.Memory.UpsertCoin(ctx, coin)
}

func testCoin(id, slug string, marketCap int64) model.Coin {
	return model.Coin{
		ID:        id,
		Name:      slug,
		Symbol:    slug,
		Slug:      slug,
		Rank:      1,
		DateAdded: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:     decimal.RequireFromString("1.2345678901"),
		Volume24h: decimal.NewFromInt(1000),
		MarketCap: decimal.NewFromInt(marketCap),
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = time.Hour // Long interval, cycles triggered manually.
	return cfg
}

func TestRunOnce_PersistsBatch(t *testing.T) {
	source := &mockSource{coins: []model.Coin{
		testCoin("1", "bitcoin", 300),
		testCoin("2", "ethereum", 100),
		testCoin("3", "tether", 200),
	}}
	mem := store.NewMemory()

	p := New(testConfig(), source, mem, nil)

	report := p.RunOnce(context.Background())

	if report.Err != nil {
		t.Fatalf("RunOnce error = %v, want nil", report.Err)
	}
	if report.Total != 3 || report.Processed != 3 || report.Failed != 0 {
		t.Errorf("report = total %d processed %d failed %d, want 3/3/0",
			report.Total, report.Processed, report.Failed)
	}

	for _, id := range []string{"1", "2", "3"} {
		history, err := mem.History(context.Background(), id)
		if err != nil {
			t.Fatalf("History(%s) failed: %v", id, err)
		}
		if len(history) != 1 {
			t.Errorf("len(history[%s]) = %d, want 1", id, len(history))
		}
	}
}

func TestRunOnce_FetchFailureAborts(t *testing.T) {
	source := &mockSource{err: errors.New("provider unreachable")}
	mem := store.NewMemory()

	p := New(testConfig(), source, mem, nil)

	report := p.RunOnce(context.Background())

	if report.Err == nil {
		t.Fatal("RunOnce error = nil, want fetch error")
	}
	if report.Total != 0 || report.Processed != 0 {
		t.Errorf("report = total %d processed %d, want 0/0", report.Total, report.Processed)
	}

	// No writes may have happened.
	coins, err := mem.TopByMarketCap(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopByMarketCap failed: %v", err)
	}
	if len(coins) != 0 {
		t.Errorf("len(coins) = %d, want 0 after aborted cycle", len(coins))
	}
}

func TestRunOnce_PartialFailureIsolation(t *testing.T) {
	source := &mockSource{coins: []model.Coin{
		testCoin("1", "bitcoin", 300),
		testCoin("2", "ethereum", 100),
		testCoin("3", "tether", 200),
	}}
	st := &failingStore{Memory: store.NewMemory(), failID: "2"}

	p := New(testConfig(), source, st, nil)

	report := p.RunOnce(context.Background())

	if report.Err != nil {
		t.Fatalf("RunOnce error = %v, want nil", report.Err)
	}
	if report.Processed != 2 || report.Failed != 1 {
		t.Errorf("report = processed %d failed %d, want 2/1", report.Processed, report.Failed)
	}

	// The failing coin must not leave a snapshot or a history point.
	if _, err := st.CoinBySlug(context.Background(), "ethereum"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("CoinBySlug(ethereum) error = %v, want ErrNotFound", err)
	}
	history, err := st.History(context.Background(), "2")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("len(history[2]) = %d, want 0", len(history))
	}

	// The other coins proceeded.
	for _, slug := range []string{"bitcoin", "tether"} {
		if _, err := st.CoinBySlug(context.Background(), slug); err != nil {
			t.Errorf("CoinBySlug(%s) error = %v, want nil", slug, err)
		}
	}
}

func TestRunOnce_RepeatedCyclesUpsert(t *testing.T) {
	coin := testCoin("1", "bitcoin", 300)
	source := &mockSource{coins: []model.Coin{coin}}
	mem := store.NewMemory()

	p := New(testConfig(), source, mem, nil)

	p.RunOnce(context.Background())

	// Second cycle with a new price overwrites the snapshot and appends a
	// second history point.
	updated := coin
	updated.Price = decimal.RequireFromString("2.5")
	source.coins = []model.Coin{updated}

	p.RunOnce(context.Background())

	coins, err := mem.TopByMarketCap(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopByMarketCap failed: %v", err)
	}
	if len(coins) != 1 {
		t.Fatalf("len(coins) = %d, want 1 after two cycles", len(coins))
	}
	if got := coins[0].Price.String(); got != "2.5" {
		t.Errorf("Price = %q, want %q", got, "2.5")
	}

	history, err := mem.History(context.Background(), "1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("len(history) = %d, want 2", len(history))
	}
}

func TestPoller_StartStop(t *testing.T) {
	source := &mockSource{coins: []model.Coin{testCoin("1", "bitcoin", 300)}}
	mem := store.NewMemory()

	p := New(testConfig(), source, mem, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// The cold-start cycle runs immediately.
	deadline := time.Now().Add(time.Second)
	for source.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if source.calls.Load() == 0 {
		t.Error("no cycle ran after Start")
	}

	if _, ok := p.LastReport(); !ok {
		t.Error("LastReport() not set after first cycle")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestPoller_StopLetsCycleFinish(t *testing.T) {
	source := &mockSource{coins: []model.Coin{
		testCoin("1", "bitcoin", 300),
		testCoin("2", "ethereum", 200),
	}}
	st := &slowStore{
		Memory:  store.NewMemory(),
		delay:   100 * time.Millisecond,
		started: make(chan struct{}),
	}

	p := New(testConfig(), source, st, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Wait until the cycle is mid-write, then stop.
	select {
	case <-st.started:
	case <-time.After(time.Second):
		t.Fatal("first upsert never began")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// Stop must not poison the in-flight batch; every write lands.
	report, ok := p.LastReport()
	if !ok {
		t.Fatal("LastReport() not set after stopped cycle")
	}
	if report.Processed != 2 || report.Failed != 0 {
		t.Errorf("report = processed %d failed %d, want 2/0", report.Processed, report.Failed)
	}

	for _, slug := range []string{"bitcoin", "ethereum"} {
		if _, err := st.CoinBySlug(context.Background(), slug); err != nil {
			t.Errorf("CoinBySlug(%s) error = %v, want nil", slug, err)
		}
	}
}

func TestPoller_DoubleStart(t *testing.T) {
	source := &mockSource{coins: nil}
	p := New(testConfig(), source, store.NewMemory(), nil)

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		p.Stop(stopCtx)
	}()

	if err := p.Start(ctx); err == nil {
		t.Error("second Start() succeeded, want error")
	}
}
