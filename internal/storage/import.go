package storage

import (
	"encoding/json"
	"fmt"
	"io"
)

// importRecord accepts both the native JSON field names and the raw column
// headers used by the upstream inventory export, so either file format can
// be loaded with `stokbot import`.
type importRecord struct {
	Code        int    `json:"stokKodu"`
	RawCode     int    `json:"Stok Kodu"`
	Name        string `json:"malzemeTanimi"`
	RawName     string `json:"Malzeme Tanımı 1"`
	Group       string `json:"kalemGrup"`
	RawGroup    string `json:"Kalem byt grb"`
	Unit        string `json:"olcuBirimi"`
	RawUnit     string `json:"Birincil ölçü birimi"`
	Category    string `json:"kategori"`
	RawCategory string `json:"Kategori"`
}

// DecodeItems reads a JSON array of inventory records from r, resolving
// field aliases and normalizing defaults.
func DecodeItems(r io.Reader) ([]Item, error) {
	var records []importRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding inventory records: %w", err)
	}

	items := make([]Item, 0, len(records))
	for i, rec := range records {
		it := Item{
			Code:     pickInt(rec.Code, rec.RawCode),
			Name:     pickString(rec.Name, rec.RawName),
			Group:    pickString(rec.Group, rec.RawGroup),
			Unit:     pickString(rec.Unit, rec.RawUnit),
			Category: pickString(rec.Category, rec.RawCategory),
		}
		if it.Code == 0 {
			return nil, fmt.Errorf("record %d: missing item code", i)
		}
		items = append(items, normalize(it))
	}
	return items, nil
}

func pickInt(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func pickString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
