package stock

import "testing"

func TestParseUnit_QuantityAndUnit(t *testing.T) {
	tests := []struct {
		raw      string
		quantity float64
		unit     string
	}{
		{"5 KG", 5, "KG"},
		{"3 ADET", 3, "ADET"},
		{"10 LT", 10, "LT"},
		{"2.5 LT", 2.5, "LT"},
		{"5KG", 5, "KG"},
		{"0 GR", 0, "GR"},
	}

	for _, tt := range tests {
		got := ParseUnit(tt.raw)
		if !got.HasQuantity {
			t.Errorf("ParseUnit(%q): expected embedded quantity", tt.raw)
			continue
		}
		if got.Quantity != tt.quantity {
			t.Errorf("ParseUnit(%q).Quantity = %g, want %g", tt.raw, got.Quantity, tt.quantity)
		}
		if got.Unit != tt.unit {
			t.Errorf("ParseUnit(%q).Unit = %q, want %q", tt.raw, got.Unit, tt.unit)
		}
	}
}

func TestParseUnit_PureUnit(t *testing.T) {
	for _, raw := range []string{"KG", "ADET", "PAKET", "M2"} {
		got := ParseUnit(raw)
		if got.HasQuantity {
			t.Errorf("ParseUnit(%q): unexpected quantity %g", raw, got.Quantity)
		}
		if got.Unit != raw {
			t.Errorf("ParseUnit(%q).Unit = %q, want %q", raw, got.Unit, raw)
		}
	}
}

func TestParseUnit_BareNumber(t *testing.T) {
	// A lone number has no trailing unit text, so it is treated as a pure
	// unit string.
	got := ParseUnit("5")
	if got.HasQuantity {
		t.Errorf("ParseUnit(\"5\"): unexpected quantity %g", got.Quantity)
	}
	if got.Unit != "5" {
		t.Errorf("ParseUnit(\"5\").Unit = %q, want \"5\"", got.Unit)
	}
}

func TestParseUnit_Empty(t *testing.T) {
	got := ParseUnit("")
	if got.HasQuantity {
		t.Error("ParseUnit(\"\"): unexpected quantity")
	}
	if got.Unit != DefaultUnit {
		t.Errorf("ParseUnit(\"\").Unit = %q, want %q", got.Unit, DefaultUnit)
	}
}

func TestCriticalLevel_Table(t *testing.T) {
	tests := []struct {
		unit string
		want int
	}{
		{"KG", 5},
		{"kg", 5},
		{"ADET", 8}, // matches the "AD" rule
		{"AD", 8},
		{"ML", 3},
		{"LT", 3},
		{"GR", 4},
		{"M2", 2},
		{"M3", 2},
		{"MT", 3},
		{"PAKET", 2},
		{"KUTU", 5}, // no match falls back to 5
		{"", 5},
	}

	for _, tt := range tests {
		if got := CriticalLevel(tt.unit); got != tt.want {
			t.Errorf("CriticalLevel(%q) = %d, want %d", tt.unit, got, tt.want)
		}
	}
}

func TestCriticalLevel_OrderMatters(t *testing.T) {
	// "KADEME" contains "AD", so the AD rule fires even though the token is
	// not a piece unit. Substring matching inside longer tokens is accepted
	// behavior.
	if got := CriticalLevel("KADEME"); got != 8 {
		t.Errorf("CriticalLevel(\"KADEME\") = %d, want 8 (AD substring)", got)
	}
}

func TestSimulateStock_Deterministic(t *testing.T) {
	for code := -5; code < 200; code += 7 {
		level := CriticalLevel("KG")
		first := SimulateStock(code, level)
		for i := 0; i < 3; i++ {
			if got := SimulateStock(code, level); got != first {
				t.Fatalf("SimulateStock(%d, %d) not deterministic: %d then %d", code, level, first, got)
			}
		}
	}
}

func TestSimulateStock_Bounds(t *testing.T) {
	for code := 0; code < 500; code++ {
		for _, level := range []int{2, 3, 4, 5, 8} {
			got := SimulateStock(code, level)
			max := int(float64(level) * 0.8)
			if got < 0 || got > max {
				t.Fatalf("SimulateStock(%d, %d) = %d, want within [0, %d]", code, level, got, max)
			}
		}
	}
}

func TestSimulateStock_KnownValue(t *testing.T) {
	// code 1001, threshold 5: hash = (1001*7+13) % 100 = 7020 % 100 = 20,
	// maxStock = 4, result = 20 % 5 = 0.
	if got := SimulateStock(1001, 5); got != 0 {
		t.Errorf("SimulateStock(1001, 5) = %d, want 0", got)
	}
}

func TestStockStatus_Bands(t *testing.T) {
	tests := []struct {
		current float64
		level   int
		want    Status
	}{
		{0, 5, StatusDepleted},
		{1, 5, StatusCritical},
		{5, 5, StatusCritical},
		{6, 5, StatusWarning},
		{7.5, 5, StatusWarning},
		{8, 5, StatusOK},
	}

	for _, tt := range tests {
		if got := StockStatus(tt.current, tt.level); got != tt.want {
			t.Errorf("StockStatus(%g, %d) = %q, want %q", tt.current, tt.level, got, tt.want)
		}
	}
}
