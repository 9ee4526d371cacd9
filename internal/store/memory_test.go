package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinboard/coinboard/internal/model"
)

func coin(id, slug string, marketCap string, rank int) model.Coin {
	return model.Coin{
		ID:        id,
		Name:      slug,
		Symbol:    slug,
		Slug:      slug,
		Rank:      rank,
		DateAdded: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:     decimal.RequireFromString("0.1"),
		Volume24h: decimal.NewFromInt(10),
		MarketCap: decimal.RequireFromString(marketCap),
	}
}

func TestMemory_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	c := coin("1", "bitcoin", "300", 1)
	require.NoError(t, m.UpsertCoin(ctx, c))
	require.NoError(t, m.UpsertCoin(ctx, c))

	coins, err := m.TopByMarketCap(ctx, 10)
	require.NoError(t, err)
	require.Len(t, coins, 1, "repeated upserts must not duplicate rows")

	// Overwrite replaces all mutable fields.
	c.Price = decimal.RequireFromString("0.2")
	c.Rank = 2
	require.NoError(t, m.UpsertCoin(ctx, c))

	got, err := m.CoinBySlug(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "0.2", got.Price.String())
	assert.Equal(t, 2, got.Rank)
}

func TestMemory_TopByMarketCapOrdering(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.UpsertCoin(ctx, coin("a", "alpha", "300", 1)))
	require.NoError(t, m.UpsertCoin(ctx, coin("b", "beta", "100", 3)))
	require.NoError(t, m.UpsertCoin(ctx, coin("c", "gamma", "200", 2)))

	coins, err := m.TopByMarketCap(ctx, 2)
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, "a", coins[0].ID)
	assert.Equal(t, "c", coins[1].ID)
}

func TestMemory_TopByMarketCapTieStability(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.UpsertCoin(ctx, coin("x", "xcoin", "100", 7)))
	require.NoError(t, m.UpsertCoin(ctx, coin("y", "ycoin", "100", 5)))

	first, err := m.TopByMarketCap(ctx, 10)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := m.TopByMarketCap(ctx, 10)
		require.NoError(t, err)
		require.Equal(t, first, again, "tied market caps must order stably")
	}
	assert.Equal(t, "y", first[0].ID, "lower rank wins ties")
}

func TestMemory_RecentHistoryWindow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	base := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		require.NoError(t, m.AppendPrice(ctx, model.PricePoint{
			CoinID:    "1",
			Price:     decimal.NewFromInt(int64(i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// A second coin with little history must not be affected by the first
	// coin's volume.
	require.NoError(t, m.AppendPrice(ctx, model.PricePoint{
		CoinID:    "2",
		Price:     decimal.NewFromInt(7),
		Timestamp: base,
	}))

	history, err := m.RecentHistory(ctx, []string{"1", "2"}, 60)
	require.NoError(t, err)

	require.Len(t, history["1"], 60, "window caps per-coin history")
	assert.Equal(t, "40", history["1"][0].Price.String(), "window keeps the most recent entries")
	assert.Equal(t, "99", history["1"][59].Price.String())
	for i := 1; i < len(history["1"]); i++ {
		assert.True(t, history["1"][i-1].Timestamp.Before(history["1"][i].Timestamp),
			"window is ordered oldest to newest")
	}

	require.Len(t, history["2"], 1)
}

func TestMemory_FullHistory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	base := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	// Append out of order; reads sort by timestamp.
	for _, i := range []int{2, 0, 1} {
		require.NoError(t, m.AppendPrice(ctx, model.PricePoint{
			CoinID:    "1",
			Price:     decimal.NewFromInt(int64(i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := m.History(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "0", history[0].Price.String())
	assert.Equal(t, "2", history[2].Price.String())
}

func TestMemory_CoinBySlugNotFound(t *testing.T) {
	m := NewMemory()

	_, err := m.CoinBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_DecimalRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	exact := "93425.1234567890123456789"
	c := coin("1", "bitcoin", "300", 1)
	c.Price = decimal.RequireFromString(exact)
	require.NoError(t, m.UpsertCoin(ctx, c))
	require.NoError(t, m.AppendPrice(ctx, model.PricePoint{
		CoinID:    "1",
		Price:     decimal.RequireFromString(exact),
		Timestamp: time.Now(),
	}))

	got, err := m.CoinBySlug(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, exact, got.Price.String())

	history, err := m.History(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, exact, history[0].Price.String())
}
