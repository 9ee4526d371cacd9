package cmc

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinboard/coinboard/internal/model"
)

// toCoin converts a raw listing to a model.Coin, failing on any missing
// required field. now becomes the snapshot's LastUpdated so every coin in a
// cycle carries the same wall-clock stamp.
func (l *Listing) toCoin(convert string, now time.Time) (model.Coin, error) {
	switch {
	case l.ID == nil:
		return model.Coin{}, fmt.Errorf("listing missing id")
	case l.Name == nil:
		return model.Coin{}, fmt.Errorf("listing %d missing name", *l.ID)
	case l.Symbol == nil:
		return model.Coin{}, fmt.Errorf("listing %d missing symbol", *l.ID)
	case l.Slug == nil:
		return model.Coin{}, fmt.Errorf("listing %d missing slug", *l.ID)
	case l.CMCRank == nil:
		return model.Coin{}, fmt.Errorf("listing %d missing cmc_rank", *l.ID)
	case l.DateAdded == nil:
		return model.Coin{}, fmt.Errorf("listing %d missing date_added", *l.ID)
	}

	dateAdded, err := time.Parse(time.RFC3339, *l.DateAdded)
	if err != nil {
		return model.Coin{}, fmt.Errorf("listing %d: parse date_added: %w", *l.ID, err)
	}

	quote, ok := l.Quote[convert]
	if !ok {
		return model.Coin{}, fmt.Errorf("listing %d missing %s quote", *l.ID, convert)
	}
	switch {
	case quote.Price == nil:
		return model.Coin{}, fmt.Errorf("listing %d missing %s price", *l.ID, convert)
	case quote.Volume24h == nil:
		return model.Coin{}, fmt.Errorf("listing %d missing %s volume_24h", *l.ID, convert)
	case quote.MarketCap == nil:
		return model.Coin{}, fmt.Errorf("listing %d missing %s market_cap", *l.ID, convert)
	}

	return model.Coin{
		ID:                strconv.FormatInt(*l.ID, 10),
		Name:              *l.Name,
		Symbol:            *l.Symbol,
		Slug:              *l.Slug,
		Rank:              *l.CMCRank,
		DateAdded:         dateAdded,
		MaxSupply:         optional(l.MaxSupply),
		CirculatingSupply: optional(l.CirculatingSupply),
		Price:             *quote.Price,
		Volume24h:         *quote.Volume24h,
		VolumeChange24h:   optional(quote.VolumeChange24h),
		MarketCap:         *quote.MarketCap,
		PercentChange1h:   optional(quote.PercentChange1h),
		PercentChange24h:  optional(quote.PercentChange24h),
		PercentChange7d:   optional(quote.PercentChange7d),
		PercentChange30d:  optional(quote.PercentChange30d),
		PercentChange60d:  optional(quote.PercentChange60d),
		PercentChange90d:  optional(quote.PercentChange90d),
		LastUpdated:       now,
	}, nil
}

// optional normalizes provider optionals: null and the zero sentinel both
// become absent.
func optional(d *decimal.Decimal) *decimal.Decimal {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}
