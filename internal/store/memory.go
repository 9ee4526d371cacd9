package store

import (
	"context"
	"sort"
	"sync"

	"github.com/coinboard/coinboard/internal/model"
)

// Memory is an in-memory store with the same contract as Postgres. It backs
// tests that would otherwise need a live database.
type Memory struct {
	mu      sync.RWMutex
	coins   map[string]model.Coin
	history map[string][]model.PricePoint
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		coins:   make(map[string]model.Coin),
		history: make(map[string][]model.PricePoint),
	}
}

// UpsertCoin inserts or fully replaces the coin keyed by its ID.
func (m *Memory) UpsertCoin(_ context.Context, coin model.Coin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coins[coin.ID] = coin
	return nil
}

// AppendPrice records one price observation.
func (m *Memory) AppendPrice(_ context.Context, point model.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[point.CoinID] = append(m.history[point.CoinID], point)
	return nil
}

// TopByMarketCap returns up to n coins by market cap descending, rank
// ascending on ties.
func (m *Memory) TopByMarketCap(_ context.Context, n int) ([]model.Coin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coins := make([]model.Coin, 0, len(m.coins))
	for _, c := range m.coins {
		coins = append(coins, c)
	}
	sort.Slice(coins, func(i, j int) bool {
		if cmp := coins[i].MarketCap.Cmp(coins[j].MarketCap); cmp != 0 {
			return cmp > 0
		}
		return coins[i].Rank < coins[j].Rank
	})

	if len(coins) > n {
		coins = coins[:n]
	}
	return coins, nil
}

// CoinBySlug looks up one coin by slug.
func (m *Memory) CoinBySlug(_ context.Context, slug string) (model.Coin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.coins {
		if c.Slug == slug {
			return c, nil
		}
	}
	return model.Coin{}, ErrNotFound
}

// RecentHistory returns each coin's k most recent points, oldest first.
func (m *Memory) RecentHistory(_ context.Context, coinIDs []string, k int) (map[string][]model.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]model.PricePoint, len(coinIDs))
	for _, id := range coinIDs {
		points := sortedCopy(m.history[id])
		if len(points) > k {
			points = points[len(points)-k:]
		}
		if len(points) > 0 {
			result[id] = points
		}
	}
	return result, nil
}

// History returns a coin's complete history, oldest first.
func (m *Memory) History(_ context.Context, coinID string) ([]model.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedCopy(m.history[coinID]), nil
}

func sortedCopy(points []model.PricePoint) []model.PricePoint {
	out := make([]model.PricePoint, len(points))
	copy(out, points)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
