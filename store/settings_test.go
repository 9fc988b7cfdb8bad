package store

import (
	"errors"
	"testing"

	"quotedesk/services"
)

func TestCustomColumns_NoSettings(t *testing.T) {
	s, orgA, _ := newTestStore(t)

	cols, err := s.CustomColumns(orgA)
	if err != nil {
		t.Fatalf("CustomColumns error: %v", err)
	}
	if len(cols) != 0 {
		t.Errorf("custom columns = %v, want none", cols)
	}

	reg, err := s.Registry(orgA)
	if err != nil {
		t.Fatalf("Registry error: %v", err)
	}
	if len(reg.Columns()) != len(services.SystemColumns()) {
		t.Errorf("registry has %d columns, want only system columns", len(reg.Columns()))
	}
}

func TestSaveCustomColumns(t *testing.T) {
	s, orgA, orgB := newTestStore(t)

	saved, err := s.SaveCustomColumns(orgA, []services.Column{
		{Key: " brand ", Label: "Brand", Type: services.ColumnText, Editable: true, System: true},
	})
	if err != nil {
		t.Fatalf("SaveCustomColumns error: %v", err)
	}
	if saved[0].Key != "brand" || saved[0].System {
		t.Errorf("saved column = %+v, want trimmed non-system column", saved[0])
	}

	if _, err := s.SaveCustomColumns(orgA, []services.Column{
		{Key: "brand", Label: "Brand", Type: services.ColumnText},
		{Key: "warranty", Label: "Warranty", Type: services.ColumnNumber},
	}); err != nil {
		t.Fatalf("second save error: %v", err)
	}
	cols, _ := s.CustomColumns(orgA)
	if len(cols) != 2 {
		t.Fatalf("custom columns = %d, want 2 after replacing", len(cols))
	}

	reg, _ := s.Registry(orgA)
	if _, ok := reg.Lookup("warranty"); !ok {
		t.Error("registry missing warranty column")
	}
	if other, _ := s.CustomColumns(orgB); len(other) != 0 {
		t.Errorf("org B custom columns = %v, want none", other)
	}

	_, err = s.SaveCustomColumns(orgA, []services.Column{{Key: "qty", Label: "Qty", Type: services.ColumnNumber}})
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("reserved key err = %v, want validation error", err)
	}
}

func TestCustomColumns_LoadFailurePropagates(t *testing.T) {
	s, orgA, _ := newTestStore(t)
	if _, err := s.SaveCustomColumns(orgA, []services.Column{
		{Key: "brand", Label: "Brand", Type: services.ColumnText},
	}); err != nil {
		t.Fatalf("SaveCustomColumns error: %v", err)
	}

	col, err := s.app.FindCollectionByNameOrId("org_settings")
	if err != nil {
		t.Fatalf("find org_settings: %v", err)
	}
	if err := s.app.Delete(col); err != nil {
		t.Fatalf("delete org_settings: %v", err)
	}

	if cols, err := s.CustomColumns(orgA); err == nil {
		t.Errorf("CustomColumns = %v, want an error when settings cannot be read", cols)
	}
	if _, err := s.Registry(orgA); err == nil {
		t.Error("Registry succeeded without settings")
	}
	if _, err := s.SaveCustomColumns(orgA, nil); err == nil {
		t.Error("SaveCustomColumns succeeded without settings")
	}
}

func TestSaveCustomColumns_SingleSettingsRecord(t *testing.T) {
	s, orgA, _ := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.SaveCustomColumns(orgA, []services.Column{
			{Key: "brand", Label: "Brand", Type: services.ColumnText},
		}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	records, err := s.app.FindRecordsByFilter("org_settings", "organization = {:org}", "", 0, 0, map[string]any{"org": orgA})
	if err != nil {
		t.Fatalf("list org_settings: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("org_settings records = %d, want 1", len(records))
	}
}
