package stock

import "github.com/ecerdem/stokbot/internal/storage"

// CriticalItem is a per-item critical-stock record. It is recomputed on
// every request and never persisted. JSON names match the wire format the
// presentation layer renders.
type CriticalItem struct {
	Name          string  `json:"malzemeTanimi"`
	Code          int     `json:"stokKodu"`
	CurrentStock  float64 `json:"mevcutStok"`
	Unit          string  `json:"olcuBirimi"`
	CriticalLevel int     `json:"kritikSeviye"`
}

// CategoryStat is one row of the category distribution. Percentages are
// rounded per category, so they are not guaranteed to sum to exactly 100.
type CategoryStat struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// UnitCount is one row of the top-units distribution.
type UnitCount struct {
	Unit  string `json:"unit"`
	Count int    `json:"count"`
}

// StatsSummary highlights the extremes of the category distribution.
type StatsSummary struct {
	TotalCategories      int    `json:"totalCategories"`
	MostPopularCategory  string `json:"mostPopularCategory"`
	LeastStockedCategory string `json:"leastStockedCategory"`
}

// OverallStats is the aggregate view over the whole inventory.
type OverallStats struct {
	TotalProducts int            `json:"totalProducts"`
	Categories    []CategoryStat `json:"categories"`
	TopUnits      []UnitCount    `json:"topUnits"`
	Summary       StatsSummary   `json:"summary"`
}

// SearchResult is a bounded page of matching items plus the unbounded match
// count.
type SearchResult struct {
	Items []storage.Item `json:"items"`
	Total int            `json:"total"`
}

// Status classifies a stock level relative to its critical threshold.
type Status string

const (
	StatusDepleted Status = "STOK YOK"
	StatusCritical Status = "KRİTİK SEVIYE"
	StatusWarning  Status = "UYARI"
	StatusOK       Status = "NORMAL"
)

// StockStatus places a current stock value into one of four bands. The
// warning band extends to 1.5 times the critical level; the analytics engine
// itself only filters on the critical boundary, downstream consumers use the
// wider bands.
func StockStatus(current float64, criticalLevel int) Status {
	switch {
	case current == 0:
		return StatusDepleted
	case current <= float64(criticalLevel):
		return StatusCritical
	case current <= 1.5*float64(criticalLevel):
		return StatusWarning
	default:
		return StatusOK
	}
}

// unknownLabel is the placeholder used when the inventory is empty or a
// grouping key is blank.
const unknownLabel = "Bilinmeyen"

// DefaultOverallStats is the degraded payload served when statistics cannot
// be computed.
func DefaultOverallStats() OverallStats {
	return OverallStats{
		Categories: []CategoryStat{},
		TopUnits:   []UnitCount{},
		Summary: StatsSummary{
			MostPopularCategory:  unknownLabel,
			LeastStockedCategory: unknownLabel,
		},
	}
}
