package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"
)

// ── Definition structs ───────────────────────────────────────────────────

type productDef struct {
	name   string
	price  float64
	custom map[string]any
}

type familyDef struct {
	name        string
	description string
	category    string
	baseMargin  float64
	products    []productDef
}

// ── Seed data ────────────────────────────────────────────────────────────

var seedCustomColumns = []map[string]any{
	{"key": "brand", "label": "Brand", "type": "text", "editable": true},
	{"key": "warranty_years", "label": "Warranty (yrs)", "type": "number", "editable": true, "align": "center"},
	{"key": "install_cost", "label": "Installation Cost", "type": "formula", "editable": false, "formula": "round(price * qty * 0.08, 2)", "align": "end"},
}

var seedFamilies = []familyDef{
	{
		name:        "Lighting",
		description: "Indoor LED fixtures",
		category:    "Electrical",
		baseMargin:  0.15,
		products: []productDef{
			{"LED Panel 2x2 36W", 1850, map[string]any{"brand": "Philips", "warranty_years": 3.0}},
			{"LED Downlight 12W", 420, map[string]any{"brand": "Havells", "warranty_years": 2.0}},
			{"Linear Profile Light 4ft", 2600, map[string]any{"brand": "Wipro", "warranty_years": 2.0}},
		},
	},
	{
		name:        "Workstations",
		description: "Modular office furniture",
		category:    "Furniture",
		baseMargin:  0.1,
		products: []productDef{
			{"Linear Workstation 1200mm", 14500, map[string]any{"brand": "Featherlite", "warranty_years": 5.0}},
			{"Ergonomic Mesh Chair", 8900, map[string]any{"brand": "Godrej", "warranty_years": 3.0}},
		},
	},
	{
		name:        "Installation Services",
		description: "Site labour and commissioning",
		category:    "Services",
		baseMargin:  0,
		products: []productDef{
			{"Electrical Installation (per point)", 350, nil},
			{"Site Survey", 2500, nil},
		},
	},
}

var seedTemplateColumns = []map[string]any{
	{"key": "name", "label": "Item"},
	{"key": "brand", "label": "Brand"},
	{"key": "unit_type", "label": "Unit"},
	{"key": "qty", "label": "Qty"},
	{"key": "price", "label": "Unit Price"},
	{"key": "total", "label": "Total"},
}

// Demo login created by Seed.
const (
	SeedAdminEmail    = "admin@brightline.example"
	SeedAdminPassword = "brightline-demo"
)

// Seed populates a demo organization with custom columns, a product catalog,
// a customer and a default template. It is safe to call on every startup
// because it returns early if any organization already exists.
func Seed(app *pocketbase.PocketBase) error {
	orgsCol, err := app.FindCollectionByNameOrId("organizations")
	if err != nil {
		return fmt.Errorf("seed: could not find organizations collection: %w", err)
	}
	existing, err := app.FindAllRecords(orgsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query organizations: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	log.Info().Msg("seed: organizations collection is empty, inserting demo data")

	find := func(name string) (*core.Collection, error) {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			return nil, fmt.Errorf("seed: could not find %s collection: %w", name, err)
		}
		return col, nil
	}
	settingsCol, err := find("org_settings")
	if err != nil {
		return err
	}
	familiesCol, err := find("product_families")
	if err != nil {
		return err
	}
	productsCol, err := find("products")
	if err != nil {
		return err
	}
	customersCol, err := find("customers")
	if err != nil {
		return err
	}
	templatesCol, err := find("templates")
	if err != nil {
		return err
	}

	org := core.NewRecord(orgsCol)
	org.Set("name", "Brightline Interiors Pvt Ltd")
	org.Set("contact_number", "+91 80 4123 5566")
	org.Set("email", "sales@brightline.example")
	org.Set("address", "42 Residency Road, Bengaluru 560025")
	org.Set("quote_prefix", "BLI")
	if err := app.Save(org); err != nil {
		return fmt.Errorf("seed: save organization: %w", err)
	}

	settings := core.NewRecord(settingsCol)
	settings.Set("organization", org.Id)
	settings.Set("custom_columns", seedCustomColumns)
	if err := app.Save(settings); err != nil {
		return fmt.Errorf("seed: save org settings: %w", err)
	}

	for _, fd := range seedFamilies {
		fam := core.NewRecord(familiesCol)
		fam.Set("organization", org.Id)
		fam.Set("name", fd.name)
		fam.Set("description", fd.description)
		fam.Set("category", fd.category)
		fam.Set("base_margin", fd.baseMargin)
		fam.Set("default_items", []string{})
		if err := app.Save(fam); err != nil {
			return fmt.Errorf("seed: save family %q: %w", fd.name, err)
		}
		for _, pd := range fd.products {
			p := core.NewRecord(productsCol)
			p.Set("organization", org.Id)
			p.Set("name", pd.name)
			p.Set("price", pd.price)
			p.Set("family", fam.Id)
			if pd.custom != nil {
				p.Set("custom_fields", pd.custom)
			}
			if err := app.Save(p); err != nil {
				return fmt.Errorf("seed: save product %q: %w", pd.name, err)
			}
		}
	}

	cust := core.NewRecord(customersCol)
	cust.Set("organization", org.Id)
	cust.Set("name", "Northwind Traders")
	cust.Set("email", "procurement@northwind.example")
	cust.Set("phone", "+91 98450 11223")
	cust.Set("address", "7th Floor, Prestige Tower, MG Road, Bengaluru")
	if err := app.Save(cust); err != nil {
		return fmt.Errorf("seed: save customer: %w", err)
	}

	tmpl := core.NewRecord(templatesCol)
	tmpl.Set("organization", org.Id)
	tmpl.Set("name", "Standard")
	tmpl.Set("columns", seedTemplateColumns)
	tmpl.Set("is_default", true)
	if err := app.Save(tmpl); err != nil {
		return fmt.Errorf("seed: save template: %w", err)
	}

	usersCol, err := find("users")
	if err != nil {
		return err
	}
	admin := core.NewRecord(usersCol)
	admin.SetEmail(SeedAdminEmail)
	admin.SetPassword(SeedAdminPassword)
	admin.SetVerified(true)
	admin.Set("organization", org.Id)
	admin.Set("role", RoleAdmin)
	if err := app.Save(admin); err != nil {
		return fmt.Errorf("seed: save admin user: %w", err)
	}

	log.Info().Str("org", org.Id).Int("families", len(seedFamilies)).Msg("seed: demo data inserted")
	return nil
}
