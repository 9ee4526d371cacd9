package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coinboard/coinboard/internal/model"
	"github.com/coinboard/coinboard/internal/poller"
	"github.com/coinboard/coinboard/internal/query"
	"github.com/coinboard/coinboard/internal/store"
)

// Queries answers the read patterns behind the API.
type Queries interface {
	TopRanked(ctx context.Context) ([]query.RankedCoin, error)
	CoinDetail(ctx context.Context, slug string) (model.Coin, []model.PricePoint, error)
}

// Pinger reports database liveness. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CycleReporter exposes the poller's last cycle outcome.
type CycleReporter interface {
	LastReport() (poller.CycleReport, bool)
}

// Handlers holds the HTTP handler set and its dependencies.
type Handlers struct {
	queries Queries
	db      Pinger
	cycles  CycleReporter
	logger  *slog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(queries Queries, db Pinger, cycles CycleReporter, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		queries: queries,
		db:      db,
		cycles:  cycles,
		logger:  logger,
	}
}

// Currencies serves the ranked list with recent trend per coin.
func (h *Handlers) Currencies(w http.ResponseWriter, r *http.Request) {
	coins, err := h.queries.TopRanked(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch ranked coins", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch coins data with history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"coins": coins})
}

// CurrencyDetail serves one coin by slug with its complete history.
func (h *Handlers) CurrencyDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "coin slug parameter is required")
		return
	}

	coin, history, err := h.queries.CoinDetail(r.Context(), slug)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("no data found for %q", slug))
		return
	case err != nil:
		h.logger.Error("failed to fetch coin detail", "slug", slug, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to fetch coin data for %q", slug))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"coin":    coin,
		"history": history,
	})
}

// Health reports component status: database connectivity and the outcome of
// the most recent ingestion cycle.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	if err := h.db.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Components["database"] = map[string]string{
			"status": "disconnected",
			"error":  err.Error(),
		}
	} else {
		health.Components["database"] = "connected"
	}

	if report, ok := h.cycles.LastReport(); ok {
		cycle := map[string]any{
			"cycle_id":   report.CycleID.String(),
			"started_at": report.StartedAt,
			"total":      report.Total,
			"processed":  report.Processed,
			"failed":     report.Failed,
		}
		if report.Err != nil {
			cycle["error"] = report.Err.Error()
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
		}
		health.Components["poller"] = cycle
	} else {
		health.Components["poller"] = "no cycle yet"
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
	}

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
