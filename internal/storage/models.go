package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// CategoryOther is the catch-all category assigned to items whose category
// field is missing or not one of the known labels.
const CategoryOther = "Diğer"

// Categories lists the fixed set of inventory categories. The order matters:
// the intent router matches category names against user messages in this
// order, and the last match wins.
var Categories = []string{
	"Et Ürünleri",
	"Beyaz Et",
	"Deniz Ürünleri",
	"Meyveler",
	"Sebzeler",
	"Bakliyat & Tahıl",
	CategoryOther,
}

var knownCategories = func() map[string]bool {
	m := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

// Item is a single inventory record. Unit may encode a quantity together
// with the unit label ("5 KG"); the stock package parses that apart.
// JSON field names match the wire format the presentation layer expects.
type Item struct {
	Code     int    `json:"stokKodu"`
	Name     string `json:"malzemeTanimi"`
	Group    string `json:"kalemGrup,omitempty"`
	Unit     string `json:"olcuBirimi"`
	Category string `json:"kategori"`
}

// GroupCount is a typed projection of a grouping aggregation result.
type GroupCount struct {
	Key   string
	Count int
}

// normalize fills in defaults for missing or unrecognized fields. Every item
// leaving the store has passed through here, so callers never see an empty
// name, unit, or an unknown category.
func normalize(it Item) Item {
	if it.Name == "" {
		it.Name = "Bilinmeyen Ürün"
	}
	if it.Unit == "" {
		it.Unit = "ADET"
	}
	if !knownCategories[it.Category] {
		it.Category = CategoryOther
	}
	return it
}
