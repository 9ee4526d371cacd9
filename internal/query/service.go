package query

import (
	"context"
	"fmt"

	"github.com/coinboard/coinboard/internal/model"
)

// Reader provides the read primitives the service composes. The store's
// Postgres and Memory types both satisfy it.
type Reader interface {
	TopByMarketCap(ctx context.Context, n int) ([]model.Coin, error)
	RecentHistory(ctx context.Context, coinIDs []string, k int) (map[string][]model.PricePoint, error)
	CoinBySlug(ctx context.Context, slug string) (model.Coin, error)
	History(ctx context.Context, coinID string) ([]model.PricePoint, error)
}

// Config holds read-path settings.
type Config struct {
	TopN          int // Coins in the ranked list (default: 30)
	HistoryWindow int // Recent points per coin in the ranked list (default: 60)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TopN:          30,
		HistoryWindow: 60,
	}
}

// RankedCoin is one entry of the ranked list: a snapshot plus its recent
// price trend.
type RankedCoin struct {
	model.Coin
	History []model.PricePoint `json:"history"`
}

// Service answers the two read patterns over the store.
type Service struct {
	cfg    Config
	reader Reader
}

// New creates a query service.
func New(cfg Config, reader Reader) *Service {
	return &Service{cfg: cfg, reader: reader}
}

// TopRanked returns the top coins by market cap, each with up to
// HistoryWindow recent price points in ascending timestamp order. An empty
// store yields an empty list, not an error. History for all coins comes
// from one batched query.
func (s *Service) TopRanked(ctx context.Context) ([]RankedCoin, error) {
	coins, err := s.reader.TopByMarketCap(ctx, s.cfg.TopN)
	if err != nil {
		return nil, fmt.Errorf("top coins: %w", err)
	}
	if len(coins) == 0 {
		return []RankedCoin{}, nil
	}

	ids := make([]string, len(coins))
	for i, c := range coins {
		ids[i] = c.ID
	}

	history, err := s.reader.RecentHistory(ctx, ids, s.cfg.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("recent history: %w", err)
	}

	ranked := make([]RankedCoin, len(coins))
	for i, c := range coins {
		points := history[c.ID]
		if points == nil {
			points = []model.PricePoint{}
		}
		ranked[i] = RankedCoin{Coin: c, History: points}
	}
	return ranked, nil
}

// CoinDetail returns one coin by slug with its complete history, oldest
// first. A miss surfaces store.ErrNotFound unchanged so callers can map it
// to a not-found response.
func (s *Service) CoinDetail(ctx context.Context, slug string) (model.Coin, []model.PricePoint, error) {
	coin, err := s.reader.CoinBySlug(ctx, slug)
	if err != nil {
		return model.Coin{}, nil, err
	}

	history, err := s.reader.History(ctx, coin.ID)
	if err != nil {
		return model.Coin{}, nil, fmt.Errorf("history for %s: %w", slug, err)
	}
	if history == nil {
		history = []model.PricePoint{}
	}
	return coin, history, nil
}
