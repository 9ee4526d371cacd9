// Package store persists coin snapshots and price history.
//
// Postgres is the production implementation; Memory backs tests. Both obey
// the same contract: upserts replace whole rows atomically, history is
// append-only, and all numeric values round-trip as exact decimals.
package store
