package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ecerdem/stokbot/internal/session"
	"github.com/ecerdem/stokbot/internal/stock"
	"github.com/ecerdem/stokbot/internal/storage"
)

type mockEngine struct {
	critical     []stock.CriticalItem
	criticalErr  error
	criticalHits int

	stats    stock.OverallStats
	statsErr error

	categories map[string][]storage.Item

	items map[int]storage.Item
}

func (m *mockEngine) CriticalItems(context.Context) ([]stock.CriticalItem, error) {
	m.criticalHits++
	if m.criticalErr != nil {
		return nil, m.criticalErr
	}
	return m.critical, nil
}

func (m *mockEngine) OverallStats(context.Context) (stock.OverallStats, error) {
	if m.statsErr != nil {
		return stock.OverallStats{}, m.statsErr
	}
	return m.stats, nil
}

func (m *mockEngine) ItemsByCategory(_ context.Context, category string) ([]storage.Item, error) {
	return m.categories[category], nil
}

func (m *mockEngine) ItemByCode(_ context.Context, code int) (storage.Item, bool, error) {
	it, ok := m.items[code]
	return it, ok, nil
}

func newSession() *session.Session {
	return session.New(10, 0).GetOrCreate("test")
}

func TestClassify_NoMatch(t *testing.T) {
	r := New(&mockEngine{})
	res := r.Classify(context.Background(), newSession(), "merhaba nasılsın")

	if res.Special != nil {
		t.Errorf("Special = %+v, want nil", res.Special)
	}
	if res.Context != "" {
		t.Errorf("Context = %q, want empty", res.Context)
	}
}

func TestClassify_CriticalStock(t *testing.T) {
	eng := &mockEngine{critical: []stock.CriticalItem{
		{Name: "Dana Kuşbaşı", Code: 1001, CurrentStock: 0, CriticalLevel: 5, Unit: "KG"},
		{Name: "Tavuk But", Code: 1002, CurrentStock: 2, CriticalLevel: 8, Unit: "ADET"},
	}}
	r := New(eng)
	sess := newSession()

	res := r.Classify(context.Background(), sess, "kritik stok durumu nedir?")

	if res.Special == nil {
		t.Fatal("expected a structured payload")
	}
	if res.Special.Type != "critical_stock" {
		t.Errorf("Type = %q, want critical_stock", res.Special.Type)
	}
	if res.Special.Message != "🚨 2 ürün kritik stok seviyesinde!" {
		t.Errorf("Message = %q", res.Special.Message)
	}
	if !strings.Contains(res.Context, "GÜNCEL KRİTİK STOK VERİLERİ:") {
		t.Errorf("context missing critical header: %q", res.Context)
	}
	if !strings.Contains(res.Context, "Dana Kuşbaşı (1001): 0/5 KG") {
		t.Errorf("context missing item line: %q", res.Context)
	}

	if _, ok := sess.CriticalSnapshot(); !ok {
		t.Error("expected the fetch to be cached on the session")
	}
}

func TestClassify_CategoryMatch(t *testing.T) {
	eng := &mockEngine{categories: map[string][]storage.Item{
		"Et Ürünleri": {
			{Code: 1001, Name: "Dana Kuşbaşı", Unit: "KG", Category: "Et Ürünleri"},
			{Code: 1002, Name: "Kuzu İncik", Unit: "KG", Category: "Et Ürünleri"},
		},
	}}
	r := New(eng)
	sess := newSession()

	res := r.Classify(context.Background(), sess, "Et Ürünleri kategorisinde neler var?")

	if res.Special == nil {
		t.Fatal("expected a structured payload")
	}
	if res.Special.Type != "category" {
		t.Errorf("Type = %q, want category", res.Special.Type)
	}
	if res.Special.Category != "Et Ürünleri" {
		t.Errorf("Category = %q, want Et Ürünleri", res.Special.Category)
	}
	if res.Special.Message != "📦 Et Ürünleri kategorisinde 2 ürün bulundu." {
		t.Errorf("Message = %q", res.Special.Message)
	}
	if !strings.Contains(res.Context, "GÜNCEL ET ÜRÜNLERI KATEGORİ VERİLERİ:") &&
		!strings.Contains(res.Context, "KATEGORİ VERİLERİ:") {
		t.Errorf("context missing category header: %q", res.Context)
	}

	snap, ok := sess.CategorySnapshot()
	if !ok || snap.Category != "Et Ürünleri" {
		t.Errorf("category snapshot = %+v, %v", snap, ok)
	}
}

func TestClassify_OverallStats(t *testing.T) {
	eng := &mockEngine{stats: stock.OverallStats{
		TotalProducts: 42,
		Summary:       stock.StatsSummary{TotalCategories: 7},
	}}
	r := New(eng)

	res := r.Classify(context.Background(), newSession(), "genel durum nedir")

	if res.Special == nil {
		t.Fatal("expected a structured payload")
	}
	if res.Special.Type != "overall_stats" {
		t.Errorf("Type = %q, want overall_stats", res.Special.Type)
	}
	if res.Special.Message != "📊 Toplam 42 ürün, 7 kategori" {
		t.Errorf("Message = %q", res.Special.Message)
	}
}

func TestClassify_ItemLookup(t *testing.T) {
	eng := &mockEngine{items: map[int]storage.Item{
		1234: {Code: 1234, Name: "Kuzu İncik", Unit: "KG"},
	}}
	r := New(eng)

	res := r.Classify(context.Background(), newSession(), "1234")
	if res.Special == nil || res.Special.Type != "item_details" {
		t.Fatalf("Special = %+v, want item_details", res.Special)
	}
	if res.Special.Message != "✅ Kuzu İncik ürünü bulundu." {
		t.Errorf("Message = %q", res.Special.Message)
	}

	res = r.Classify(context.Background(), newSession(), "9999")
	if res.Special == nil || res.Special.Type != "item_details" {
		t.Fatalf("Special = %+v, want item_details", res.Special)
	}
	if res.Special.Message != "❌ 9999 ürün kodu bulunamadı." {
		t.Errorf("Message = %q", res.Special.Message)
	}
	if res.Special.Data != nil {
		t.Errorf("Data = %v, want nil for unknown code", res.Special.Data)
	}
}

func TestClassify_NumericOnlyWholeMessage(t *testing.T) {
	r := New(&mockEngine{})
	res := r.Classify(context.Background(), newSession(), "1234 kodlu ürün")
	if res.Special != nil {
		t.Errorf("mixed text with digits should not trigger a lookup: %+v", res.Special)
	}
}

func TestClassify_LastRuleWins(t *testing.T) {
	// Message matches both the critical phrases and a numeric lookup is
	// impossible here, so combine critical + overall instead.
	eng := &mockEngine{
		critical: []stock.CriticalItem{{Name: "Dana Kuşbaşı", Code: 1001, Unit: "KG", CriticalLevel: 5}},
		stats:    stock.OverallStats{TotalProducts: 10, Summary: stock.StatsSummary{TotalCategories: 3}},
	}
	r := New(eng)

	res := r.Classify(context.Background(), newSession(), "kritik stok ve genel durum")

	if res.Special == nil {
		t.Fatal("expected a structured payload")
	}
	if res.Special.Type != "overall_stats" {
		t.Errorf("Type = %q, want overall_stats (later rule wins)", res.Special.Type)
	}
	// The context block still carries the earlier rule's data.
	if !strings.Contains(res.Context, "GÜNCEL KRİTİK STOK VERİLERİ:") {
		t.Errorf("context lost the critical block: %q", res.Context)
	}
}

func TestClassify_AnalysisUsesCacheWithoutFetch(t *testing.T) {
	eng := &mockEngine{critical: []stock.CriticalItem{
		{Name: "Dana Kuşbaşı", Code: 1001, CurrentStock: 0, CriticalLevel: 5, Unit: "KG"},
	}}
	r := New(eng)
	sess := newSession()

	// First turn populates the snapshot.
	r.Classify(context.Background(), sess, "kritik stok")
	if eng.criticalHits != 1 {
		t.Fatalf("criticalHits = %d, want 1", eng.criticalHits)
	}

	// Analysis turn must reuse the snapshot, not refetch.
	res := r.Classify(context.Background(), sess, "acil sipariş önerisi ver")
	if eng.criticalHits != 1 {
		t.Errorf("criticalHits = %d after analysis turn, want 1 (no refetch)", eng.criticalHits)
	}
	if !strings.Contains(res.Context, "MEVCUT KRİTİK STOK VERİLERİ (Analiz için kullan):") {
		t.Errorf("context missing analysis block: %q", res.Context)
	}
	if !strings.Contains(res.Context, "Durum: STOK YOK") {
		t.Errorf("context missing depleted status: %q", res.Context)
	}
	if res.Special != nil {
		t.Errorf("analysis rule should not attach a payload: %+v", res.Special)
	}
}

func TestClassify_AnalysisWithoutSnapshot(t *testing.T) {
	r := New(&mockEngine{})
	res := r.Classify(context.Background(), newSession(), "analiz yapar mısın")

	if res.Context != "" {
		t.Errorf("no snapshot means no analysis block, got %q", res.Context)
	}
}

func TestClassify_FetchErrorIsSkipped(t *testing.T) {
	eng := &mockEngine{
		criticalErr: errors.New("store down"),
		stats:       stock.OverallStats{TotalProducts: 5, Summary: stock.StatsSummary{TotalCategories: 2}},
	}
	r := New(eng)

	res := r.Classify(context.Background(), newSession(), "kritik stok ve genel durum")

	// The failed rule contributes nothing; the later rule still fires.
	if res.Special == nil || res.Special.Type != "overall_stats" {
		t.Fatalf("Special = %+v, want overall_stats despite earlier failure", res.Special)
	}
	if strings.Contains(res.Context, "KRİTİK STOK") {
		t.Errorf("failed fetch should not produce a context block: %q", res.Context)
	}
}
