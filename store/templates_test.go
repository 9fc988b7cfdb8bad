package store

import (
	"errors"
	"testing"

	"quotedesk/services"
	"quotedesk/testhelpers"
)

func TestSaveTemplate_CanonicalizesColumns(t *testing.T) {
	s, orgA, _ := newTestStore(t)

	tmpl, err := s.SaveTemplate(orgA, services.Template{
		Name: "Compact",
		Columns: []services.TemplateColumn{
			{Key: "item"},
			{Key: "quantity", Label: "Qty"},
			{Key: "total"},
		},
	})
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}

	want := []services.TemplateColumn{
		{Key: "name", Label: "Item"},
		{Key: "qty", Label: "Qty"},
		{Key: "total", Label: "Total"},
	}
	if len(tmpl.Columns) != len(want) {
		t.Fatalf("columns = %+v, want %+v", tmpl.Columns, want)
	}
	for i := range want {
		if tmpl.Columns[i] != want[i] {
			t.Errorf("column %d = %+v, want %+v", i, tmpl.Columns[i], want[i])
		}
	}

	got, err := s.GetTemplate(orgA, tmpl.ID)
	if err != nil || len(got.Columns) != 3 {
		t.Errorf("GetTemplate = %+v, %v", got, err)
	}
}

func TestSaveTemplate_Validation(t *testing.T) {
	s, orgA, _ := newTestStore(t)

	tooMany := make([]services.TemplateColumn, services.MaxDocumentColumns+1)
	for i := range tooMany {
		tooMany[i] = services.TemplateColumn{Key: string(rune('a'+i)) + "_col", Label: "C"}
	}

	tests := []struct {
		name string
		tmpl services.Template
	}{
		{"blank name", services.Template{Columns: []services.TemplateColumn{{Key: "name"}}}},
		{"no columns", services.Template{Name: "Empty"}},
		{"duplicate alias", services.Template{Name: "Dup", Columns: []services.TemplateColumn{{Key: "qty"}, {Key: "quantity"}}}},
		{"too many columns", services.Template{Name: "Wide", Columns: tooMany}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.SaveTemplate(orgA, tt.tmpl); !errors.Is(err, services.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestDefaultTemplate(t *testing.T) {
	s, orgA, orgB := newTestStore(t)

	if def, err := s.DefaultTemplate(orgA); err != nil || def != nil {
		t.Fatalf("DefaultTemplate with none = %v, %v; want nil, nil", def, err)
	}

	cols := []services.TemplateColumn{{Key: "name"}, {Key: "total"}}
	first, err := s.SaveTemplate(orgA, services.Template{Name: "First", Columns: cols, IsDefault: true})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := s.SaveTemplate(orgA, services.Template{Name: "Second", Columns: cols, IsDefault: true})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}

	def, err := s.DefaultTemplate(orgA)
	if err != nil || def == nil || def.ID != second.ID {
		t.Fatalf("DefaultTemplate = %+v, %v; want %s", def, err, second.ID)
	}
	reloaded, _ := s.GetTemplate(orgA, first.ID)
	if reloaded.IsDefault {
		t.Error("first template still marked default")
	}

	if def, _ := s.DefaultTemplate(orgB); def != nil {
		t.Errorf("org B default = %+v, want nil", def)
	}

	if err := s.DeleteTemplate(orgB, second.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-org delete err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTemplate(orgA, second.ID); err != nil {
		t.Fatalf("DeleteTemplate error: %v", err)
	}
	if list, _ := s.ListTemplates(orgA); len(list) != 1 {
		t.Errorf("templates after delete = %d, want 1", len(list))
	}
}

func TestTemplates_CorruptColumnsReported(t *testing.T) {
	s, orgA, _ := newTestStore(t)
	rec := testhelpers.CreateTestTemplate(t, s.app, orgA, "Broken", [2]string{"name", "Item"})
	rec.Set("columns", "not a column list")
	if err := s.app.Save(rec); err != nil {
		t.Fatalf("save corrupt template: %v", err)
	}

	if _, err := s.GetTemplate(orgA, rec.Id); err == nil {
		t.Error("GetTemplate decoded corrupt columns without error")
	}
	if _, err := s.ListTemplates(orgA); err == nil {
		t.Error("ListTemplates decoded corrupt columns without error")
	}
}
