// Package query serves the two read patterns: the ranked list with recent
// trend, and the single-coin full-history detail.
package query
