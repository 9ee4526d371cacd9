// Package poller implements the ingestion scheduler.
//
// The poller:
//   - Fetches the provider's ranked listing once at startup, then every interval
//   - Upserts each coin's snapshot and appends one price history point
//   - Isolates per-coin store failures so the rest of a batch still lands
//   - Never retries a failed cycle; the next scheduled cycle heals it
package poller
