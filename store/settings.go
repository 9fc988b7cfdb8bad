package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// settingsRecord returns nil without an error when orgID has no settings yet.
func (s *Store) settingsRecord(orgID string) (*core.Record, error) {
	rec, err := s.app.FindFirstRecordByFilter("org_settings", "organization = {:org}", map[string]any{"org": orgID})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load org settings: %w", err)
	}
	return rec, nil
}

// CustomColumns returns the organization's custom column list. An
// organization without settings has none.
func (s *Store) CustomColumns(orgID string) ([]services.Column, error) {
	rec, err := s.settingsRecord(orgID)
	if err != nil || rec == nil {
		return nil, err
	}
	var cols []services.Column
	if err := decodeJSONField(rec, "custom_columns", &cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// Registry resolves the organization's full column registry.
func (s *Store) Registry(orgID string) (*services.Registry, error) {
	custom, err := s.CustomColumns(orgID)
	if err != nil {
		return nil, err
	}
	return services.NewRegistry(custom), nil
}

// SaveCustomColumns validates and replaces the custom column list. Templates
// that reference removed columns are left alone; they keep the saved label.
func (s *Store) SaveCustomColumns(orgID string, cols []services.Column) ([]services.Column, error) {
	if err := services.ValidateCustomColumns(cols); err != nil {
		return nil, err
	}
	if cols == nil {
		cols = []services.Column{}
	}
	for i := range cols {
		cols[i].Key = strings.TrimSpace(cols[i].Key)
		cols[i].System = false
	}

	rec, err := s.settingsRecord(orgID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		if rec, err = s.newRecord("org_settings", orgID); err != nil {
			return nil, err
		}
	}
	rec.Set("custom_columns", cols)
	if err := s.app.Save(rec); err != nil {
		return nil, fmt.Errorf("save custom columns: %w", err)
	}
	return cols, nil
}
