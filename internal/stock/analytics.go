package stock

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ecerdem/stokbot/internal/storage"
)

const (
	// scanWindow bounds how many records the critical-stock scan reads.
	scanWindow = 50
	// maxCriticalItems bounds how many critical records are collected.
	maxCriticalItems = 10
	// categoryLimit bounds a per-category listing.
	categoryLimit = 100
	// searchLimit bounds a search result page.
	searchLimit = 50
	// topUnitCount is how many unit rows the overall stats include.
	topUnitCount = 5
)

// Inventory is the subset of store operations the analytics engine needs.
type Inventory interface {
	ItemByCode(ctx context.Context, code int) (storage.Item, error)
	ItemsByCategory(ctx context.Context, category string, limit int) ([]storage.Item, error)
	ScanItems(ctx context.Context, limit int) ([]storage.Item, error)
	SearchItems(ctx context.Context, query string, limit int) ([]storage.Item, error)
	CountSearch(ctx context.Context, query string) (int, error)
	CountItems(ctx context.Context) (int, error)
	CountByCategory(ctx context.Context) ([]storage.GroupCount, error)
	CountByUnit(ctx context.Context, limit int) ([]storage.GroupCount, error)
}

// Engine derives stock analytics from raw inventory records: critical-stock
// detection, category distribution, and per-item lookups.
type Engine struct {
	inv Inventory
}

// NewEngine creates an analytics engine over the given inventory.
func NewEngine(inv Inventory) *Engine {
	return &Engine{inv: inv}
}

// CriticalItems scans the first records of the inventory and returns those
// whose current stock sits below the unit-derived critical level. When the
// unit field embeds a quantity, that quantity is the current stock;
// otherwise a deterministic simulated value stands in. The scan stops after
// maxCriticalItems matches or scanWindow records, whichever comes first.
func (e *Engine) CriticalItems(ctx context.Context) ([]CriticalItem, error) {
	items, err := e.inv.ScanItems(ctx, scanWindow)
	if err != nil {
		return nil, fmt.Errorf("critical stock scan: %w", err)
	}

	var critical []CriticalItem
	for _, it := range items {
		parsed := ParseUnit(it.Unit)
		level := CriticalLevel(parsed.Unit)

		var current float64
		if parsed.HasQuantity {
			current = parsed.Quantity
		} else {
			current = float64(SimulateStock(it.Code, level))
		}

		if current < float64(level) {
			critical = append(critical, CriticalItem{
				Name:          it.Name,
				Code:          it.Code,
				CurrentStock:  current,
				Unit:          parsed.Unit,
				CriticalLevel: level,
			})
		}

		if len(critical) >= maxCriticalItems {
			break
		}
	}

	return critical, nil
}

// OverallStats aggregates the whole inventory into category and unit
// distributions. An empty inventory yields the default stats object rather
// than a division by zero.
func (e *Engine) OverallStats(ctx context.Context) (OverallStats, error) {
	total, err := e.inv.CountItems(ctx)
	if err != nil {
		return OverallStats{}, fmt.Errorf("counting products: %w", err)
	}
	if total == 0 {
		return DefaultOverallStats(), nil
	}

	byCategory, err := e.inv.CountByCategory(ctx)
	if err != nil {
		return OverallStats{}, fmt.Errorf("category distribution: %w", err)
	}

	categories := make([]CategoryStat, len(byCategory))
	for i, gc := range byCategory {
		name := gc.Key
		if name == "" {
			name = unknownLabel
		}
		categories[i] = CategoryStat{
			Name:       name,
			Count:      gc.Count,
			Percentage: int(math.Round(float64(gc.Count) / float64(total) * 100)),
		}
	}

	byUnit, err := e.inv.CountByUnit(ctx, topUnitCount)
	if err != nil {
		return OverallStats{}, fmt.Errorf("unit distribution: %w", err)
	}

	topUnits := make([]UnitCount, len(byUnit))
	for i, gc := range byUnit {
		unit := gc.Key
		if unit == "" {
			unit = DefaultUnit
		}
		topUnits[i] = UnitCount{Unit: unit, Count: gc.Count}
	}

	summary := StatsSummary{
		TotalCategories:      len(categories),
		MostPopularCategory:  unknownLabel,
		LeastStockedCategory: unknownLabel,
	}
	if len(categories) > 0 {
		summary.MostPopularCategory = categories[0].Name
		summary.LeastStockedCategory = categories[len(categories)-1].Name
	}

	return OverallStats{
		TotalProducts: total,
		Categories:    categories,
		TopUnits:      topUnits,
		Summary:       summary,
	}, nil
}

// ItemsByCategory lists items in one category, bounded to categoryLimit.
func (e *Engine) ItemsByCategory(ctx context.Context, category string) ([]storage.Item, error) {
	items, err := e.inv.ItemsByCategory(ctx, category, categoryLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching category %q: %w", category, err)
	}
	return items, nil
}

// ItemByCode looks up a single item. Absence is reported via the bool, not
// as an error.
func (e *Engine) ItemByCode(ctx context.Context, code int) (storage.Item, bool, error) {
	it, err := e.inv.ItemByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Item{}, false, nil
	}
	if err != nil {
		return storage.Item{}, false, fmt.Errorf("fetching item %d: %w", code, err)
	}
	return it, true, nil
}

// Search runs a free-text search over names, groups, and codes.
func (e *Engine) Search(ctx context.Context, query string) (SearchResult, error) {
	items, err := e.inv.SearchItems(ctx, query, searchLimit)
	if err != nil {
		return SearchResult{}, fmt.Errorf("searching %q: %w", query, err)
	}
	total, err := e.inv.CountSearch(ctx, query)
	if err != nil {
		return SearchResult{}, fmt.Errorf("counting matches for %q: %w", query, err)
	}
	if items == nil {
		items = []storage.Item{}
	}
	return SearchResult{Items: items, Total: total}, nil
}
