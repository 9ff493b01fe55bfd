package stock

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultUnit is the generic "piece" unit assumed when a record carries no
// unit information at all.
const DefaultUnit = "ADET"

// ParsedUnit is the result of splitting a raw unit field. Source records
// sometimes encode a quantity inside the unit column ("5 KG", "2.5 LT");
// when that happens Quantity holds the number and HasQuantity is true.
type ParsedUnit struct {
	Quantity    float64
	HasQuantity bool
	Unit        string
}

var unitPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(.+)$`)

// ParseUnit splits a raw unit field into an optional leading quantity and a
// unit label. It never fails: input without a leading number comes back as a
// pure unit, and empty input falls back to DefaultUnit.
func ParseUnit(raw string) ParsedUnit {
	if raw == "" {
		return ParsedUnit{Unit: DefaultUnit}
	}

	if m := unitPattern.FindStringSubmatch(raw); m != nil {
		qty, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return ParsedUnit{Quantity: qty, HasQuantity: true, Unit: strings.TrimSpace(m[2])}
		}
	}

	return ParsedUnit{Unit: strings.TrimSpace(raw)}
}

// CriticalLevel maps a unit label to the stock threshold below which an item
// counts as critical. Matching is case-insensitive substring, checked in a
// fixed order; note that "AD" also matches inside longer tokens, which is
// accepted behavior.
func CriticalLevel(unit string) int {
	u := strings.ToUpper(unit)
	switch {
	case strings.Contains(u, "KG"):
		return 5
	case strings.Contains(u, "AD"):
		return 8
	case strings.Contains(u, "ML"), strings.Contains(u, "LT"):
		return 3
	case strings.Contains(u, "GR"):
		return 4
	case strings.Contains(u, "M2"), strings.Contains(u, "M3"):
		return 2
	case strings.Contains(u, "MT"):
		return 3
	case strings.Contains(u, "PAKET"):
		return 2
	default:
		return 5
	}
}

// SimulateStock derives a reproducible pseudo current-stock value for an
// item that carries no real quantity. The source data has no live stock
// telemetry, so a stable per-code surrogate is used: the same code always
// reports the same simulated stock. Result is in [0, floor(level*0.8)].
func SimulateStock(code, criticalLevel int) int {
	hash := code*7 + 13
	if hash < 0 {
		hash = -hash
	}
	hash %= 100
	maxStock := int(float64(criticalLevel) * 0.8)
	return hash % (maxStock + 1)
}
