package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coin is the latest known state of one tracked asset. Exactly one row exists
// per provider ID; every ingestion cycle that includes the asset overwrites
// all mutable fields in place.
type Coin struct {
	ID        string    `json:"id"`         // Provider asset ID (stable)
	Name      string    `json:"name"`       // Display name
	Symbol    string    `json:"symbol"`     // Trading symbol (e.g. "BTC")
	Slug      string    `json:"slug"`       // URL-safe unique name, the external lookup key
	Rank      int       `json:"cmc_rank"`   // Provider rank
	DateAdded time.Time `json:"date_added"` // First listing date at the provider

	// Supply figures. Nil when the provider omits them.
	MaxSupply         *decimal.Decimal `json:"max_supply"`
	CirculatingSupply *decimal.Decimal `json:"circulating_supply"`

	// Quote in the configured convert currency. Decimals preserve the
	// provider's exact representation through storage and back.
	Price           decimal.Decimal  `json:"current_price"`
	Volume24h       decimal.Decimal  `json:"volume_24h"`
	VolumeChange24h *decimal.Decimal `json:"volume_change_24h"`
	MarketCap       decimal.Decimal  `json:"market_cap"`

	// Percent changes. Nil when the provider omits them.
	PercentChange1h  *decimal.Decimal `json:"percent_change_1h"`
	PercentChange24h *decimal.Decimal `json:"percent_change_24h"`
	PercentChange7d  *decimal.Decimal `json:"percent_change_7d"`
	PercentChange30d *decimal.Decimal `json:"percent_change_30d"`
	PercentChange60d *decimal.Decimal `json:"percent_change_60d"`
	PercentChange90d *decimal.Decimal `json:"percent_change_90d"`

	LastUpdated time.Time `json:"last_updated"` // Wall clock of the cycle that wrote this row
}

// PricePoint is one immutable recorded price observation for a coin.
type PricePoint struct {
	CoinID    string          `json:"-"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}
