package cmc

import "github.com/shopspring/decimal"

// listingsResponse is the envelope from GET /v1/cryptocurrency/listings/latest.
type listingsResponse struct {
	Status Status    `json:"status"`
	Data   []Listing `json:"data"`
}

// Status is the CoinMarketCap response status block. The API reports
// application-level failures here even on HTTP 200.
type Status struct {
	Timestamp    string `json:"timestamp"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	CreditCount  int    `json:"credit_count"`
}

// Listing is one asset entry as returned by the listings endpoint.
//
// Required fields are pointers so a missing field is distinguishable from a
// zero value; toCoin rejects the whole listing when any of them is absent.
// Decimals are unmarshalled from the JSON literal, so the provider's exact
// textual representation is preserved.
type Listing struct {
	ID                *int64           `json:"id"`
	Name              *string          `json:"name"`
	Symbol            *string          `json:"symbol"`
	Slug              *string          `json:"slug"`
	CMCRank           *int             `json:"cmc_rank"`
	DateAdded         *string          `json:"date_added"`
	CirculatingSupply *decimal.Decimal `json:"circulating_supply"`
	MaxSupply         *decimal.Decimal `json:"max_supply"`

	// Quote maps convert currency ("USD") to its quote block.
	Quote map[string]Quote `json:"quote"`
}

// Quote is the per-currency price block nested in a Listing.
type Quote struct {
	Price            *decimal.Decimal `json:"price"`
	Volume24h        *decimal.Decimal `json:"volume_24h"`
	VolumeChange24h  *decimal.Decimal `json:"volume_change_24h"`
	PercentChange1h  *decimal.Decimal `json:"percent_change_1h"`
	PercentChange24h *decimal.Decimal `json:"percent_change_24h"`
	PercentChange7d  *decimal.Decimal `json:"percent_change_7d"`
	PercentChange30d *decimal.Decimal `json:"percent_change_30d"`
	PercentChange60d *decimal.Decimal `json:"percent_change_60d"`
	PercentChange90d *decimal.Decimal `json:"percent_change_90d"`
	MarketCap        *decimal.Decimal `json:"market_cap"`
	LastUpdated      string           `json:"last_updated"`
}
