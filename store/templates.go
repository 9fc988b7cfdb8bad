package store

import (
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

func templateFromRecord(rec *core.Record) (services.Template, error) {
	t := services.Template{
		ID:        rec.Id,
		Name:      rec.GetString("name"),
		IsDefault: rec.GetBool("is_default"),
	}
	if err := decodeJSONField(rec, "columns", &t.Columns); err != nil {
		return services.Template{}, err
	}
	return t, nil
}

// ListTemplates returns templates ordered by name.
func (s *Store) ListTemplates(orgID string) ([]services.Template, error) {
	records, err := s.list("templates", orgID, "name")
	if err != nil {
		return nil, err
	}
	out := make([]services.Template, 0, len(records))
	for _, rec := range records {
		t, err := templateFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// GetTemplate loads one template.
func (s *Store) GetTemplate(orgID, id string) (services.Template, error) {
	rec, err := s.find("templates", orgID, id)
	if err != nil {
		return services.Template{}, err
	}
	return templateFromRecord(rec)
}

// DefaultTemplate returns the organization's default template, or nil when
// none is marked.
func (s *Store) DefaultTemplate(orgID string) (*services.Template, error) {
	records, err := s.app.FindRecordsByFilter(
		"templates",
		"organization = {:org} && is_default = true",
		"-updated",
		1, 0,
		map[string]any{"org": orgID},
	)
	if err != nil {
		return nil, fmt.Errorf("find default template: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	t, err := templateFromRecord(records[0])
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveTemplate validates and stores t. Column keys are canonicalized and
// blank labels are filled from the registry so every entry carries the label
// it will print with even after its column is deleted. Marking t as default
// clears the flag on every other template.
func (s *Store) SaveTemplate(orgID string, t services.Template) (services.Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	if err := services.ValidateTemplate(t.Name, t.Columns); err != nil {
		return services.Template{}, err
	}
	if len(t.Columns) > services.MaxDocumentColumns {
		return services.Template{}, services.NewValidationError("columns",
			fmt.Sprintf("a template can hold at most %d columns", services.MaxDocumentColumns))
	}
	reg, err := s.Registry(orgID)
	if err != nil {
		return services.Template{}, err
	}
	columns := services.TemplateColumnsFromSelection(services.ResolveTemplateColumns(t.Columns, reg))

	var saved services.Template
	err = s.app.RunInTransaction(func(txApp core.App) error {
		var rec *core.Record
		if t.ID == "" {
			col, err := txApp.FindCollectionByNameOrId("templates")
			if err != nil {
				return fmt.Errorf("find templates collection: %w", err)
			}
			rec = core.NewRecord(col)
			rec.Set("organization", orgID)
		} else {
			var err error
			if rec, err = findRecord(txApp, "templates", orgID, t.ID); err != nil {
				return err
			}
		}

		if t.IsDefault {
			others, err := txApp.FindRecordsByFilter(
				"templates",
				"organization = {:org} && is_default = true && id != {:id}",
				"", 0, 0,
				map[string]any{"org": orgID, "id": rec.Id},
			)
			if err != nil {
				return fmt.Errorf("find default templates: %w", err)
			}
			for _, o := range others {
				o.Set("is_default", false)
				if err := txApp.Save(o); err != nil {
					return fmt.Errorf("clear default template: %w", err)
				}
			}
		}

		rec.Set("name", t.Name)
		rec.Set("columns", columns)
		rec.Set("is_default", t.IsDefault)
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save template: %w", err)
		}
		var err error
		saved, err = templateFromRecord(rec)
		return err
	})
	if err != nil {
		return services.Template{}, err
	}
	return saved, nil
}

// DeleteTemplate removes a template. Quotes that used it fall back to the
// default selection.
func (s *Store) DeleteTemplate(orgID, id string) error {
	return s.remove("templates", orgID, id)
}
