// Package database provides connection pool management for PostgreSQL.
//
// One pool serves both tables:
//   - coins: current per-asset state (relational)
//   - price_history: append-only price observations (time-series)
package database
