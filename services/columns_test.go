package services

import (
	"errors"
	"testing"
)

func TestResolveRegistry_SystemFirstAndWins(t *testing.T) {
	reg := NewRegistry([]Column{
		{Key: "brand", Label: "Brand", Type: ColumnText},
		{Key: "price", Label: "My Price", Type: ColumnText},
		{Key: "quantity", Label: "Alias"},
		{Key: " ", Label: "Blank"},
		{Key: "brand", Label: "Duplicate"},
		{Key: "notes"},
	})

	keys := reg.Keys()
	want := []string{"name", "price", "family", "qty", "unit_type", "total", "brand", "notes"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	price, _ := reg.Lookup("price")
	if price.Label != "Unit Price" || !price.System {
		t.Errorf("system price column overridden: %+v", price)
	}
	brand, _ := reg.Lookup("brand")
	if brand.Label != "Brand" {
		t.Errorf("first brand entry should win, got %+v", brand)
	}
	notes, _ := reg.Lookup("notes")
	if notes.Label != "notes" || notes.Type != ColumnText {
		t.Errorf("defaults not applied: %+v", notes)
	}
	if len(reg.CustomColumns()) != 2 {
		t.Errorf("custom columns = %v", reg.CustomColumns())
	}
}

func TestRegistry_LookupAlias(t *testing.T) {
	reg := NewRegistry(nil)
	tests := map[string]string{
		"quantity":   "qty",
		"unit_price": "price",
		"item":       "name",
		"unit":       "unit_type",
	}
	for alias, key := range tests {
		col, ok := reg.Lookup(alias)
		if !ok || col.Key != key {
			t.Errorf("Lookup(%q) = %+v, %v; want key %q", alias, col, ok, key)
		}
	}
	if _, ok := reg.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}

func TestValidateCustomColumns(t *testing.T) {
	tests := []struct {
		name    string
		cols    []Column
		wantErr bool
	}{
		{"valid", []Column{{Key: "brand", Type: ColumnText}, {Key: "cost", Type: ColumnFormula, Formula: "price * 0.8"}}, false},
		{"empty key", []Column{{Key: "", Type: ColumnText}}, true},
		{"reserved key", []Column{{Key: "qty", Type: ColumnNumber}}, true},
		{"reserved alias", []Column{{Key: "quantity", Type: ColumnNumber}}, true},
		{"duplicate", []Column{{Key: "a", Type: ColumnText}, {Key: "a", Type: ColumnText}}, true},
		{"bad type", []Column{{Key: "a", Type: "money"}}, true},
		{"bad align", []Column{{Key: "a", Type: ColumnText, Align: "justify"}}, true},
		{"formula missing", []Column{{Key: "a", Type: ColumnFormula}}, true},
		{"formula syntax", []Column{{Key: "a", Type: ColumnFormula, Formula: "price *"}}, true},
		{"formula on text", []Column{{Key: "a", Type: ColumnText, Formula: "1"}}, true},
		{"formula unknown key", []Column{{Key: "a", Type: ColumnFormula, Formula: "price * discount"}}, true},
		{"formula uses alias and later column", []Column{
			{Key: "a", Type: ColumnFormula, Formula: "quantity * warranty"},
			{Key: "warranty", Type: ColumnNumber},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomColumns(tt.cols)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("error %v does not wrap ErrValidation", err)
			}
		})
	}
}
