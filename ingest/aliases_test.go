package ingest

import "testing"

func TestMatchColumnsEnglish(t *testing.T) {
	m := MatchColumns([]string{"Product Name", "Unit Price", "Qty", "Order Date", "Region"})

	want := map[Field]int{
		FieldProduct:  0,
		FieldPrice:    1,
		FieldQuantity: 2,
		FieldDate:     3,
		FieldRegion:   4,
	}
	for f, idx := range want {
		got, ok := m[f]
		if !ok {
			t.Errorf("field %s not matched", f)
			continue
		}
		if got != idx {
			t.Errorf("field %s matched column %d, want %d", f, got, idx)
		}
	}
}

func TestMatchColumnsRussian(t *testing.T) {
	m := MatchColumns([]string{"Товар", "Цена", "Количество", "Дата", "Регион"})

	for _, f := range []Field{FieldProduct, FieldPrice, FieldQuantity, FieldDate, FieldRegion} {
		if !m.Has(f) {
			t.Errorf("field %s not matched from Russian headers", f)
		}
	}
}

func TestMatchColumnsCaseAndWhitespace(t *testing.T) {
	m := MatchColumns([]string{"  PRICE  ", "ProDuct"})
	if !m.Has(FieldPrice) || !m.Has(FieldProduct) {
		t.Error("matching should be case-insensitive and trimmed")
	}
}

func TestMatchColumnsFirstMatchWins(t *testing.T) {
	// Two price aliases: the earlier column wins.
	m := MatchColumns([]string{"price", "cost"})
	if idx := m[FieldPrice]; idx != 0 {
		t.Errorf("first matching column should win, got index %d", idx)
	}
}

func TestMatchColumnsIgnoresUnknown(t *testing.T) {
	m := MatchColumns([]string{"frobnicator", "price", "zzz"})
	if len(m) != 1 {
		t.Errorf("unknown columns should be ignored, matched %d fields", len(m))
	}
}

func TestMissingRequired(t *testing.T) {
	tests := []struct {
		headers []string
		missing int
	}{
		{[]string{"product", "price"}, 0},
		{[]string{"product"}, 1},
		{[]string{"date", "region"}, 2},
	}

	for _, tt := range tests {
		m := MatchColumns(tt.headers)
		if got := len(missingRequired(m)); got != tt.missing {
			t.Errorf("headers %v: %d missing required, want %d", tt.headers, got, tt.missing)
		}
	}
}

func TestEveryFieldHasAnAlias(t *testing.T) {
	seen := make(map[Field]bool)
	for _, f := range aliasTable {
		seen[f] = true
	}
	for _, f := range []Field{FieldProduct, FieldPrice, FieldQuantity, FieldDate,
		FieldRegion, FieldDiscount, FieldCurrency, FieldID} {
		if !seen[f] {
			t.Errorf("canonical field %s has no alias", f)
		}
	}
}
