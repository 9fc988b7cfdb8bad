package store

import (
	"errors"
	"testing"

	"quotedesk/services"
	"quotedesk/testhelpers"
)

func TestFamiliesAndProducts(t *testing.T) {
	s, orgA, orgB := newTestStore(t)

	fam, err := s.SaveFamily(orgA, services.ProductFamily{Name: "Lighting", Category: "Electrical", BaseMargin: 0.15})
	if err != nil {
		t.Fatalf("SaveFamily error: %v", err)
	}
	if _, err := s.SaveFamily(orgA, services.ProductFamily{Name: "Bad", BaseMargin: -0.1}); !errors.Is(err, services.ErrValidation) {
		t.Errorf("negative margin err = %v, want validation error", err)
	}

	lamp, err := s.SaveProduct(orgA, services.Product{
		Name:         "Desk Lamp",
		Price:        100,
		FamilyID:     fam.ID,
		CustomFields: map[string]any{"brand": "Lumo"},
	})
	if err != nil {
		t.Fatalf("SaveProduct error: %v", err)
	}
	if _, err := s.SaveProduct(orgA, services.Product{Name: "Loose Cable", Price: 5}); err != nil {
		t.Fatalf("SaveProduct without family: %v", err)
	}

	foreign, _ := s.SaveFamily(orgB, services.ProductFamily{Name: "Other"})
	if _, err := s.SaveProduct(orgA, services.Product{Name: "X", FamilyID: foreign.ID}); !errors.Is(err, services.ErrValidation) {
		t.Errorf("foreign family err = %v, want validation error", err)
	}

	inFamily, err := s.ListProducts(orgA, fam.ID)
	if err != nil {
		t.Fatalf("ListProducts error: %v", err)
	}
	if len(inFamily) != 1 || inFamily[0].ID != lamp.ID {
		t.Errorf("family products = %+v, want only the lamp", inFamily)
	}
	if all, _ := s.ListProducts(orgA, ""); len(all) != 2 {
		t.Errorf("all products = %d, want 2", len(all))
	}
	if inFamily[0].CustomFields["brand"] != "Lumo" {
		t.Errorf("custom fields = %v", inFamily[0].CustomFields)
	}

	idx, _ := s.FamilyIndex(orgA)
	if idx["lighting"] != fam.ID {
		t.Errorf("FamilyIndex = %v", idx)
	}

	sels, err := s.FamilySelections(orgA, []string{fam.ID})
	if err != nil {
		t.Fatalf("FamilySelections error: %v", err)
	}
	if len(sels) != 1 || sels[0].Family.BaseMargin != 0.15 || len(sels[0].Products) != 1 {
		t.Errorf("selections = %+v", sels)
	}
	if _, err := s.FamilySelections(orgA, []string{foreign.ID}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign selection err = %v, want ErrNotFound", err)
	}
}

func TestImportProducts_AllOrNothing(t *testing.T) {
	s, orgA, _ := newTestStore(t)
	fam, _ := s.SaveFamily(orgA, services.ProductFamily{Name: "Lighting"})

	n, err := s.ImportProducts(orgA, []services.Product{
		{Name: "A", Price: 1, FamilyID: fam.ID},
		{Name: "B", Price: 2},
	})
	if err != nil || n != 2 {
		t.Fatalf("ImportProducts = %d, %v; want 2, nil", n, err)
	}

	_, err = s.ImportProducts(orgA, []services.Product{
		{Name: "C", Price: 3},
		{Name: "D", Price: 4, FamilyID: "missing"},
	})
	if err == nil {
		t.Fatal("expected error for unknown family")
	}
	if all, _ := s.ListProducts(orgA, ""); len(all) != 2 {
		t.Errorf("products after failed import = %d, want 2", len(all))
	}
}

func TestProducts_CorruptCustomFieldsReported(t *testing.T) {
	s, orgA, _ := newTestStore(t)
	fam := testhelpers.CreateTestFamily(t, s.app, orgA, "Lighting", 0.1)
	plain := testhelpers.CreateTestProduct(t, s.app, orgA, fam.Id, "Bulb", 5, nil)
	if p, err := s.GetProduct(orgA, plain.Id); err != nil || len(p.CustomFields) != 0 {
		t.Fatalf("product without custom fields = %+v, %v", p, err)
	}

	rec := testhelpers.CreateTestProduct(t, s.app, orgA, fam.Id, "Lamp", 10, map[string]any{"brand": "Lumo"})
	rec.Set("custom_fields", "[1, 2]")
	if err := s.app.Save(rec); err != nil {
		t.Fatalf("save corrupt product: %v", err)
	}
	if _, err := s.GetProduct(orgA, rec.Id); err == nil {
		t.Error("GetProduct decoded corrupt custom fields without error")
	}
	if _, err := s.FamilySelections(orgA, []string{fam.Id}); err == nil {
		t.Error("FamilySelections ignored a corrupt product")
	}
}
