// Package api exposes the HTTP surface: the chat endpoint, the aggregate
// stats endpoint, inventory search, and a health probe. It also hosts the
// MCP tool server.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecerdem/stokbot/internal/intent"
	"github.com/ecerdem/stokbot/internal/llm"
	"github.com/ecerdem/stokbot/internal/session"
	"github.com/ecerdem/stokbot/internal/stock"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds the collaborators the HTTP handlers are wired with.
type Deps struct {
	Engine     StockEngine
	Sessions   *session.Store
	Router     *intent.Router
	LLM        llm.Client
	StaleAfter time.Duration
}

// NewHandler returns the HTTP handler for all routes.
func NewHandler(deps Deps) http.Handler {
	if deps.StaleAfter <= 0 {
		deps.StaleAfter = session.DefaultStaleAfter
	}

	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/chat", handleChat(deps))
	r.Get("/stats", handleStats(deps))
	r.Get("/search", handleSearch(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			httpError(w, http.StatusBadRequest, "Arama sorgusu gerekli")
			return
		}

		result, err := deps.Engine.Search(r.Context(), query)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "Arama başarısız oldu")
			return
		}

		writeJSON(w, result)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": fmt.Sprintf(format, args...),
	})
}

// StockEngine is the analytics surface the HTTP layer needs directly.
type StockEngine interface {
	CriticalItems(ctx context.Context) ([]stock.CriticalItem, error)
	OverallStats(ctx context.Context) (stock.OverallStats, error)
	Search(ctx context.Context, query string) (stock.SearchResult, error)
}
