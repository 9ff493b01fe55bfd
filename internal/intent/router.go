// Package intent classifies an inbound chat message against an ordered table
// of deterministic keyword rules and fetches the inventory data each matching
// rule needs. At most one structured payload survives (the last matching
// rule wins); the textual context block for the language model accumulates
// across all fired rules.
package intent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/ecerdem/stokbot/internal/session"
	"github.com/ecerdem/stokbot/internal/stock"
	"github.com/ecerdem/stokbot/internal/storage"
)

// Engine is the analytics surface the router fetches data through.
type Engine interface {
	CriticalItems(ctx context.Context) ([]stock.CriticalItem, error)
	OverallStats(ctx context.Context) (stock.OverallStats, error)
	ItemsByCategory(ctx context.Context, category string) ([]storage.Item, error)
	ItemByCode(ctx context.Context, code int) (storage.Item, bool, error)
}

// SpecialResponse is the tagged structured payload attached to a chat reply.
type SpecialResponse struct {
	Type     string `json:"type"`
	Data     any    `json:"data"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// Result is the outcome of classifying one message.
type Result struct {
	Special *SpecialResponse
	Context string
}

var (
	criticalPhrases = []string{"kritik stok", "azalan ürün", "kritik seviye"}
	overallPhrases  = []string{"genel durum", "stok durumu", "toplam ürün"}

	analysisKeywords = []string{
		"acil", "öncelik", "sipariş", "önemli", "kritik", "analiz", "öneri",
		"hangi ürün", "ne sipariş", "hangi stok", "acil sipariş",
	}

	numericMessage = regexp.MustCompile(`^\d+$`)
)

// contextItemLimit bounds how many category items the context block lists.
const contextItemLimit = 10

// Router evaluates the rule table against incoming messages.
type Router struct {
	engine Engine
}

// New creates a router over the given analytics engine.
func New(engine Engine) *Router {
	return &Router{engine: engine}
}

// Classify runs the rule table for one message. Rule fetch failures are
// logged and skipped; classification is best-effort and never returns an
// error — a message matching nothing simply yields an empty Result.
func (r *Router) Classify(ctx context.Context, sess *session.Session, message string) Result {
	lower := strings.ToLower(message)

	var special *SpecialResponse
	var block strings.Builder

	if containsAny(lower, criticalPhrases) {
		if items, err := r.engine.CriticalItems(ctx); err != nil {
			slog.Warn("critical stock fetch failed", "error", err)
		} else {
			sess.SetCriticalSnapshot(items)
			special = &SpecialResponse{
				Type:    "critical_stock",
				Data:    items,
				Message: fmt.Sprintf("🚨 %d ürün kritik stok seviyesinde!", len(items)),
			}
			block.WriteString("GÜNCEL KRİTİK STOK VERİLERİ:\n")
			for _, it := range items {
				fmt.Fprintf(&block, "- %s (%d): %s/%d %s\n",
					it.Name, it.Code, formatStock(it.CurrentStock), it.CriticalLevel, it.Unit)
			}
			block.WriteString("\n")
		}
	}

	for _, category := range storage.Categories {
		if !strings.Contains(lower, strings.ToLower(category)) {
			continue
		}
		items, err := r.engine.ItemsByCategory(ctx, category)
		if err != nil {
			slog.Warn("category fetch failed", "category", category, "error", err)
			continue
		}
		sess.SetCategorySnapshot(category, items)
		special = &SpecialResponse{
			Type:     "category",
			Data:     items,
			Category: category,
			Message:  fmt.Sprintf("📦 %s kategorisinde %d ürün bulundu.", category, len(items)),
		}
		fmt.Fprintf(&block, "GÜNCEL %s KATEGORİ VERİLERİ:\n", strings.ToUpper(category))
		for i, it := range items {
			if i >= contextItemLimit {
				break
			}
			fmt.Fprintf(&block, "- %s (%d)\n", it.Name, it.Code)
		}
		block.WriteString("\n")
	}

	if containsAny(lower, overallPhrases) {
		if stats, err := r.engine.OverallStats(ctx); err != nil {
			slog.Warn("overall stats fetch failed", "error", err)
		} else {
			sess.Stamp()
			special = &SpecialResponse{
				Type:    "overall_stats",
				Data:    stats,
				Message: fmt.Sprintf("📊 Toplam %d ürün, %d kategori", stats.TotalProducts, stats.Summary.TotalCategories),
			}
		}
	}

	if numericMessage.MatchString(message) {
		special = r.lookupItem(ctx, message, special)
	}

	if containsAny(lower, analysisKeywords) {
		if snapshot, ok := sess.CriticalSnapshot(); ok {
			block.WriteString("MEVCUT KRİTİK STOK VERİLERİ (Analiz için kullan):\n")
			for _, it := range snapshot {
				status := stock.StatusCritical
				if it.CurrentStock == 0 {
					status = stock.StatusDepleted
				}
				fmt.Fprintf(&block, "- %s (Kod: %d): Mevcut %s %s, Kritik seviye: %d %s, Durum: %s\n",
					it.Name, it.Code, formatStock(it.CurrentStock), it.Unit, it.CriticalLevel, it.Unit, status)
			}
			block.WriteString("\n")
		}
	}

	return Result{Special: special, Context: block.String()}
}

func (r *Router) lookupItem(ctx context.Context, message string, prev *SpecialResponse) *SpecialResponse {
	code, err := strconv.Atoi(message)
	if err != nil {
		// Digits beyond int range; treat as an unknown code.
		return &SpecialResponse{
			Type:    "item_details",
			Message: fmt.Sprintf("❌ %s ürün kodu bulunamadı.", message),
		}
	}

	item, found, err := r.engine.ItemByCode(ctx, code)
	if err != nil {
		slog.Warn("item lookup failed", "code", code, "error", err)
		return prev
	}
	if !found {
		return &SpecialResponse{
			Type:    "item_details",
			Message: fmt.Sprintf("❌ %d ürün kodu bulunamadı.", code),
		}
	}
	return &SpecialResponse{
		Type:    "item_details",
		Data:    item,
		Message: fmt.Sprintf("✅ %s ürünü bulundu.", item.Name),
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// formatStock renders a stock value without a trailing ".0" for whole
// numbers.
func formatStock(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
