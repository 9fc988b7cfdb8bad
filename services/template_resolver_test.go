package services

import (
	"errors"
	"testing"
)

func registryABC() *Registry {
	return ResolveRegistry(nil, []Column{
		{Key: "A", Label: "Col A", Type: ColumnText},
		{Key: "B", Label: "Col B", Type: ColumnText},
		{Key: "C", Label: "Col C", Type: ColumnNumber},
	})
}

func TestResolveTemplateColumns_SavedOrderThenRegistry(t *testing.T) {
	got := ResolveTemplateColumns([]TemplateColumn{{Key: "B", Label: "Bee"}, {Key: "A", Label: "Col A"}}, registryABC())

	want := []struct {
		key      string
		label    string
		selected bool
	}{
		{"B", "Bee", true},
		{"A", "Col A", true},
		{"C", "Col C", false},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d columns, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Key != w.key || got[i].Label != w.label || got[i].Selected != w.selected {
			t.Errorf("col %d = %+v, want %+v", i, got[i], w)
		}
	}
	if got[2].Type != ColumnNumber {
		t.Errorf("C type = %q, want number", got[2].Type)
	}
}

func TestResolveTemplateColumns_DeletedColumnKeepsLabel(t *testing.T) {
	got := ResolveTemplateColumns([]TemplateColumn{{Key: "gone", Label: "Old Column"}}, registryABC())

	if got[0].Key != "gone" || got[0].Label != "Old Column" {
		t.Fatalf("deleted column = %+v", got[0])
	}
	if got[0].IsSystem || got[0].Kind != KindCustom || !got[0].Selected {
		t.Errorf("deleted column flags = %+v", got[0])
	}
}

func TestResolveTemplateColumns_Kinds(t *testing.T) {
	reg := NewRegistry([]Column{{Key: "install", Label: "Install", Type: ColumnFormula, Formula: "price * 0.1"}})
	saved := []TemplateColumn{
		{Key: "quantity"},
		{Key: "unit_price"},
		{Key: "install"},
		{Key: "total"},
	}
	got := ResolveTemplateColumns(saved, reg)

	want := []struct {
		key  string
		kind ColumnKind
	}{
		{"qty", KindQuantity},
		{"price", KindPrice},
		{"install", KindFormula},
		{"total", KindTotal},
	}
	for i, w := range want {
		if got[i].Key != w.key || got[i].Kind != w.kind {
			t.Errorf("col %d = %s/%s, want %s/%s", i, got[i].Key, got[i].Kind, w.key, w.kind)
		}
	}
	if got[0].Label != "Quantity" {
		t.Errorf("blank saved label should fall back to registry label, got %q", got[0].Label)
	}
}

func TestResolveTemplateColumns_DuplicateAliasCollapses(t *testing.T) {
	got := ResolveTemplateColumns([]TemplateColumn{{Key: "qty"}, {Key: "quantity"}}, NewRegistry(nil))
	count := 0
	for _, c := range got {
		if c.Key == "qty" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("qty appears %d times", count)
	}
}

func TestTemplateColumns_RoundTrip(t *testing.T) {
	reg := NewRegistry(nil)
	saved := []TemplateColumn{{Key: "qty", Label: "Qty"}, {Key: "name", Label: "Item"}}

	resolved := ResolveTemplateColumns(saved, reg)
	back := TemplateColumnsFromSelection(resolved)
	if len(back) != 2 || back[0] != saved[0] || back[1] != saved[1] {
		t.Errorf("round trip = %+v, want %+v", back, saved)
	}
}

func TestResolveForTemplate_Default(t *testing.T) {
	reg := NewRegistry(nil)
	sel := SelectedColumns(ResolveForTemplate(nil, reg))
	if len(sel) != len(DefaultColumnKeys) {
		t.Fatalf("selected = %d, want %d", len(sel), len(DefaultColumnKeys))
	}
	for i, key := range DefaultColumnKeys {
		if sel[i].Key != key {
			t.Errorf("default[%d] = %q, want %q", i, sel[i].Key, key)
		}
	}
}

func TestMoveColumn(t *testing.T) {
	cols := ResolveTemplateColumns([]TemplateColumn{{Key: "A"}, {Key: "B"}}, registryABC())

	moved, err := MoveColumn(cols, 2, 0)
	if err != nil {
		t.Fatalf("MoveColumn: %v", err)
	}
	order := ""
	for _, c := range moved {
		order += c.Key
	}
	if order != "CAB" {
		t.Errorf("order = %s, want CAB", order)
	}
	if moved[0].Selected {
		t.Error("moving changed selection")
	}
	if cols[0].Key != "A" {
		t.Error("MoveColumn modified its input")
	}

	if _, err := MoveColumn(cols, 0, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name    string
		tname   string
		cols    []TemplateColumn
		wantErr bool
	}{
		{"valid", "Standard", []TemplateColumn{{Key: "name"}}, false},
		{"blank name", " ", []TemplateColumn{{Key: "name"}}, true},
		{"no columns", "Empty", nil, true},
		{"blank key", "T", []TemplateColumn{{Key: ""}}, true},
		{"alias duplicate", "T", []TemplateColumn{{Key: "qty"}, {Key: "quantity"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplate(tt.tname, tt.cols)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
