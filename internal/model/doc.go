// Package model defines the domain types shared across components.
//
// Two entities exist:
//   - Coin: current per-asset state, overwritten in place each cycle
//   - PricePoint: append-only price observations, never mutated
package model
