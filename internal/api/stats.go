package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ecerdem/stokbot/internal/stock"
)

// statsTimeout bounds the aggregate fetch; past it the endpoint serves a
// degraded default payload instead of blocking.
const statsTimeout = 10 * time.Second

type statsPayload struct {
	CriticalItems []stock.CriticalItem `json:"criticalItems"`
	OverallStats  stock.OverallStats   `json:"overallStats"`
}

type statsResponse struct {
	Success bool         `json:"success"`
	Data    statsPayload `json:"data"`
}

// handleStats fetches critical items and overall stats concurrently. Any
// failure or timeout degrades to an empty payload with success still true:
// the dashboard treats missing data as a valid state, not an error.
func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), statsTimeout)
		defer cancel()

		var (
			critical []stock.CriticalItem
			overall  stock.OverallStats
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			critical, err = deps.Engine.CriticalItems(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			overall, err = deps.Engine.OverallStats(gctx)
			return err
		})

		if err := g.Wait(); err != nil {
			slog.Error("stats fetch failed, serving fallback", "error", err)
			writeJSON(w, statsResponse{
				Success: true,
				Data: statsPayload{
					CriticalItems: []stock.CriticalItem{},
					OverallStats:  stock.DefaultOverallStats(),
				},
			})
			return
		}

		if critical == nil {
			critical = []stock.CriticalItem{}
		}

		writeJSON(w, statsResponse{
			Success: true,
			Data: statsPayload{
				CriticalItems: critical,
				OverallStats:  overall,
			},
		})
	}
}
