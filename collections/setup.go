package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"
)

// Roles a user may hold inside an organization.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Quote statuses as stored.
const (
	StatusDraft     = "DRAFT"
	StatusFinalized = "FINALIZED"
)

// Setup programmatically creates/ensures every collection the quoting app
// needs, and adds the organization and role fields to the built-in users
// auth collection.
func Setup(app *pocketbase.PocketBase) {
	orgs := ensureCollection(app, "organizations", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "logo_url"})
		c.Fields.Add(&core.TextField{Name: "contact_number"})
		c.Fields.Add(&core.TextField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "quote_prefix", Max: 12})
		addTimestamps(c)
	})

	if err := ensureField(app, "users", &core.RelationField{
		Name:         "organization",
		CollectionId: orgs.Id,
		MaxSelect:    1,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to add users.organization")
	}
	if err := ensureField(app, "users", &core.SelectField{
		Name:      "role",
		Values:    []string{RoleAdmin, RoleMember},
		MaxSelect: 1,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to add users.role")
	}

	ensureCollection(app, "org_settings", func(c *core.Collection) {
		addOrganization(c, orgs)
		c.Fields.Add(&core.JSONField{Name: "custom_columns", MaxSize: 1 << 20})
		addTimestamps(c)
	})

	customers := ensureCollection(app, "customers", func(c *core.Collection) {
		addOrganization(c, orgs)
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "email"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.TextField{Name: "address"})
		addTimestamps(c)
	})

	families := ensureCollection(app, "product_families", func(c *core.Collection) {
		addOrganization(c, orgs)
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.TextField{Name: "category"})
		c.Fields.Add(&core.NumberField{Name: "base_margin"})
		c.Fields.Add(&core.JSONField{Name: "default_items", MaxSize: 1 << 16})
		addTimestamps(c)
	})

	ensureCollection(app, "products", func(c *core.Collection) {
		addOrganization(c, orgs)
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "price"})
		c.Fields.Add(&core.RelationField{
			Name:         "family",
			CollectionId: families.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.JSONField{Name: "custom_fields", MaxSize: 1 << 16})
		addTimestamps(c)
	})

	templates := ensureCollection(app, "templates", func(c *core.Collection) {
		addOrganization(c, orgs)
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.JSONField{Name: "columns", MaxSize: 1 << 16})
		c.Fields.Add(&core.BoolField{Name: "is_default"})
		addTimestamps(c)
	})

	ensureCollection(app, "quotes", func(c *core.Collection) {
		addOrganization(c, orgs)
		c.Fields.Add(&core.TextField{Name: "display_id"})
		c.Fields.Add(&core.RelationField{
			Name:         "customer",
			CollectionId: customers.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "customer_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "customer_email"})
		c.Fields.Add(&core.TextField{Name: "customer_phone"})
		c.Fields.Add(&core.TextField{Name: "customer_address"})
		c.Fields.Add(&core.JSONField{Name: "families", MaxSize: 4 << 20})
		c.Fields.Add(&core.NumberField{Name: "total_amount"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{StatusDraft, StatusFinalized},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "template",
			CollectionId: templates.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "document_key"})
		c.Fields.Add(&core.TextField{Name: "document_url"})
		addTimestamps(c)
	})
}

func addOrganization(c *core.Collection, orgs *core.Collection) {
	c.Fields.Add(&core.RelationField{
		Name:          "organization",
		Required:      true,
		CollectionId:  orgs.Id,
		CascadeDelete: true,
		MaxSelect:     1,
	})
}

func addTimestamps(c *core.Collection) {
	c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Debug().Str("collection", name).Msg("collection exists, skipping creation")
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatal().Err(err).Str("collection", name).Msg("failed to create collection")
	}

	log.Info().Str("collection", name).Str("id", collection.Id).Msg("created collection")
	return collection
}

// ensureField adds field to an existing collection unless a field with the
// same name is already present.
func ensureField(app *pocketbase.PocketBase, collection string, field core.Field) error {
	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		return fmt.Errorf("find collection %q: %w", collection, err)
	}
	if col.Fields.GetByName(field.GetName()) != nil {
		return nil
	}
	col.Fields.Add(field)
	if err := app.Save(col); err != nil {
		return fmt.Errorf("add field %s.%s: %w", collection, field.GetName(), err)
	}
	return nil
}
