// Package store persists quotes and catalog data in PocketBase collections.
// Every read and write is scoped to one organization.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// ErrNotFound is returned when a record does not exist in the caller's
// organization.
var ErrNotFound = errors.New("not found")

// Store is the persistence collaborator.
type Store struct {
	app core.App
	now func() time.Time
}

// New returns a Store backed by app.
func New(app core.App) *Store {
	return &Store{app: app, now: time.Now}
}

// App exposes the underlying PocketBase app.
func (s *Store) App() core.App { return s.app }

// find loads a record and checks that it belongs to orgID.
func (s *Store) find(collection, orgID, id string) (*core.Record, error) {
	return findRecord(s.app, collection, orgID, id)
}

func findRecord(app core.App, collection, orgID, id string) (*core.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: %w", collection, ErrNotFound)
	}
	rec, err := app.FindRecordById(collection, id)
	if err != nil || rec.GetString("organization") != orgID {
		return nil, fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
	}
	return rec, nil
}

func (s *Store) list(collection, orgID, sort string) ([]*core.Record, error) {
	records, err := s.app.FindRecordsByFilter(
		collection,
		"organization = {:org}",
		sort,
		0, 0,
		map[string]any{"org": orgID},
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return records, nil
}

// decodeJSONField unmarshals a JSON field into dst. An unset field leaves dst
// untouched.
func decodeJSONField(rec *core.Record, key string, dst any) error {
	raw := strings.TrimSpace(rec.GetString(key))
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s %s %s: %w", rec.Collection().Name, rec.Id, key, err)
	}
	return nil
}

// newRecord prepares an unsaved record owned by orgID.
func (s *Store) newRecord(collection, orgID string) (*core.Record, error) {
	col, err := s.app.FindCollectionByNameOrId(collection)
	if err != nil {
		return nil, fmt.Errorf("find %s collection: %w", collection, err)
	}
	rec := core.NewRecord(col)
	rec.Set("organization", orgID)
	return rec, nil
}

// findOrNew returns the existing record for id, or a fresh one when id is empty.
func (s *Store) findOrNew(collection, orgID, id string) (*core.Record, error) {
	if id == "" {
		return s.newRecord(collection, orgID)
	}
	return s.find(collection, orgID, id)
}

func (s *Store) remove(collection, orgID, id string) error {
	rec, err := s.find(collection, orgID, id)
	if err != nil {
		return err
	}
	if err := s.app.Delete(rec); err != nil {
		return fmt.Errorf("delete %s %s: %w", collection, id, err)
	}
	return nil
}

// Organization loads the tenant profile.
func (s *Store) Organization(orgID string) (services.Organization, error) {
	rec, err := s.app.FindRecordById("organizations", orgID)
	if err != nil {
		return services.Organization{}, fmt.Errorf("organization %s: %w", orgID, ErrNotFound)
	}
	return services.Organization{
		ID:            rec.Id,
		Name:          rec.GetString("name"),
		LogoURL:       rec.GetString("logo_url"),
		ContactNumber: rec.GetString("contact_number"),
		Email:         rec.GetString("email"),
		Address:       rec.GetString("address"),
		QuotePrefix:   rec.GetString("quote_prefix"),
	}, nil
}
