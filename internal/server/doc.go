// Package server exposes the HTTP read API:
//
//	GET /api/currencies        ranked list with recent trend
//	GET /api/currencies/{slug} single-coin detail with full history
//	GET /health                component health
package server
