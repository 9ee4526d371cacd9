// Package cmc implements the CoinMarketCap provider client.
//
// The client is stateless: one authenticated GET per call with a bounded
// timeout, decoded strictly into typed quotes. A fetch either yields the
// full decoded batch or a single error.
package cmc
