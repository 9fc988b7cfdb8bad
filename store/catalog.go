package store

import (
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

func customerFromRecord(rec *core.Record) services.Customer {
	return services.Customer{
		ID:      rec.Id,
		Name:    rec.GetString("name"),
		Email:   rec.GetString("email"),
		Phone:   rec.GetString("phone"),
		Address: rec.GetString("address"),
	}
}

// ListCustomers returns customers ordered by name.
func (s *Store) ListCustomers(orgID string) ([]services.Customer, error) {
	records, err := s.list("customers", orgID, "name")
	if err != nil {
		return nil, err
	}
	out := make([]services.Customer, 0, len(records))
	for _, rec := range records {
		out = append(out, customerFromRecord(rec))
	}
	return out, nil
}

// GetCustomer loads one customer.
func (s *Store) GetCustomer(orgID, id string) (services.Customer, error) {
	rec, err := s.find("customers", orgID, id)
	if err != nil {
		return services.Customer{}, err
	}
	return customerFromRecord(rec), nil
}

// SaveCustomer creates c when c.ID is empty and updates it otherwise.
func (s *Store) SaveCustomer(orgID string, c services.Customer) (services.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return services.Customer{}, services.NewValidationError("name", "customer name is required")
	}
	rec, err := s.findOrNew("customers", orgID, c.ID)
	if err != nil {
		return services.Customer{}, err
	}
	rec.Set("name", c.Name)
	rec.Set("email", strings.TrimSpace(c.Email))
	rec.Set("phone", strings.TrimSpace(c.Phone))
	rec.Set("address", strings.TrimSpace(c.Address))
	if err := s.app.Save(rec); err != nil {
		return services.Customer{}, fmt.Errorf("save customer: %w", err)
	}
	return customerFromRecord(rec), nil
}

// DeleteCustomer removes a customer. Quotes keep their customer snapshot.
func (s *Store) DeleteCustomer(orgID, id string) error {
	return s.remove("customers", orgID, id)
}

func familyFromRecord(rec *core.Record) (services.ProductFamily, error) {
	f := services.ProductFamily{
		ID:          rec.Id,
		Name:        rec.GetString("name"),
		Description: rec.GetString("description"),
		Category:    rec.GetString("category"),
		BaseMargin:  rec.GetFloat("base_margin"),
	}
	if err := decodeJSONField(rec, "default_items", &f.DefaultItems); err != nil {
		return services.ProductFamily{}, err
	}
	return f, nil
}

// ListFamilies returns product families ordered by name.
func (s *Store) ListFamilies(orgID string) ([]services.ProductFamily, error) {
	records, err := s.list("product_families", orgID, "name")
	if err != nil {
		return nil, err
	}
	out := make([]services.ProductFamily, 0, len(records))
	for _, rec := range records {
		f, err := familyFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// GetFamily loads one product family.
func (s *Store) GetFamily(orgID, id string) (services.ProductFamily, error) {
	rec, err := s.find("product_families", orgID, id)
	if err != nil {
		return services.ProductFamily{}, err
	}
	return familyFromRecord(rec)
}

// SaveFamily creates or updates a product family. Margins already applied to
// quotes are not affected.
func (s *Store) SaveFamily(orgID string, f services.ProductFamily) (services.ProductFamily, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return services.ProductFamily{}, services.NewValidationError("name", "family name is required")
	}
	if f.BaseMargin < 0 {
		return services.ProductFamily{}, services.NewValidationError("base_margin", "margin cannot be negative")
	}
	rec, err := s.findOrNew("product_families", orgID, f.ID)
	if err != nil {
		return services.ProductFamily{}, err
	}
	if f.DefaultItems == nil {
		f.DefaultItems = []string{}
	}
	rec.Set("name", f.Name)
	rec.Set("description", f.Description)
	rec.Set("category", f.Category)
	rec.Set("base_margin", f.BaseMargin)
	rec.Set("default_items", f.DefaultItems)
	if err := s.app.Save(rec); err != nil {
		return services.ProductFamily{}, fmt.Errorf("save family: %w", err)
	}
	return familyFromRecord(rec)
}

// DeleteFamily removes a family. Its products stay in the catalog without a family.
func (s *Store) DeleteFamily(orgID, id string) error {
	return s.remove("product_families", orgID, id)
}

// FamilyIndex maps lowercased family names to ids, for imports.
func (s *Store) FamilyIndex(orgID string) (map[string]string, error) {
	families, err := s.ListFamilies(orgID)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]string, len(families))
	for _, f := range families {
		idx[strings.ToLower(f.Name)] = f.ID
	}
	return idx, nil
}

func productFromRecord(rec *core.Record) (services.Product, error) {
	p := services.Product{
		ID:       rec.Id,
		Name:     rec.GetString("name"),
		Price:    rec.GetFloat("price"),
		FamilyID: rec.GetString("family"),
	}
	if err := decodeJSONField(rec, "custom_fields", &p.CustomFields); err != nil {
		return services.Product{}, err
	}
	return p, nil
}

// ListProducts returns products ordered by name, optionally only those of familyID.
func (s *Store) ListProducts(orgID, familyID string) ([]services.Product, error) {
	filter := "organization = {:org}"
	params := map[string]any{"org": orgID}
	if familyID != "" {
		filter += " && family = {:family}"
		params["family"] = familyID
	}
	records, err := s.app.FindRecordsByFilter("products", filter, "name", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]services.Product, 0, len(records))
	for _, rec := range records {
		p, err := productFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// GetProduct loads one product.
func (s *Store) GetProduct(orgID, id string) (services.Product, error) {
	rec, err := s.find("products", orgID, id)
	if err != nil {
		return services.Product{}, err
	}
	return productFromRecord(rec)
}

func (s *Store) saveProduct(app core.App, orgID string, p services.Product) (services.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return services.Product{}, services.NewValidationError("name", "product name is required")
	}
	if p.FamilyID != "" {
		if _, err := findRecord(app, "product_families", orgID, p.FamilyID); err != nil {
			return services.Product{}, services.NewValidationError("family_id", "unknown product family")
		}
	}

	var rec *core.Record
	var err error
	if p.ID == "" {
		col, cerr := app.FindCollectionByNameOrId("products")
		if cerr != nil {
			return services.Product{}, fmt.Errorf("find products collection: %w", cerr)
		}
		rec = core.NewRecord(col)
		rec.Set("organization", orgID)
	} else if rec, err = findRecord(app, "products", orgID, p.ID); err != nil {
		return services.Product{}, err
	}

	if p.CustomFields == nil {
		p.CustomFields = map[string]any{}
	}
	rec.Set("name", p.Name)
	rec.Set("price", p.Price)
	rec.Set("family", p.FamilyID)
	rec.Set("custom_fields", p.CustomFields)
	if err := app.Save(rec); err != nil {
		return services.Product{}, fmt.Errorf("save product: %w", err)
	}
	return productFromRecord(rec)
}

// SaveProduct creates or updates a product.
func (s *Store) SaveProduct(orgID string, p services.Product) (services.Product, error) {
	return s.saveProduct(s.app, orgID, p)
}

// ImportProducts creates every product in one transaction.
func (s *Store) ImportProducts(orgID string, products []services.Product) (int, error) {
	created := 0
	err := s.app.RunInTransaction(func(txApp core.App) error {
		for i, p := range products {
			p.ID = ""
			if _, err := s.saveProduct(txApp, orgID, p); err != nil {
				return fmt.Errorf("product %d (%s): %w", i+1, p.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// DeleteProduct removes a product. Quotes keep their item snapshots.
func (s *Store) DeleteProduct(orgID, id string) error {
	return s.remove("products", orgID, id)
}

// FamilySelections loads each family in familyIDs together with its current
// products, in the order given.
func (s *Store) FamilySelections(orgID string, familyIDs []string) ([]services.FamilySelection, error) {
	out := make([]services.FamilySelection, 0, len(familyIDs))
	for _, id := range familyIDs {
		fam, err := s.GetFamily(orgID, id)
		if err != nil {
			return nil, err
		}
		products, err := s.ListProducts(orgID, id)
		if err != nil {
			return nil, err
		}
		out = append(out, services.FamilySelection{Family: fam, Products: products})
	}
	return out, nil
}
