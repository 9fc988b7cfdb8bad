// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
)

var userSeq atomic.Int64

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

func save(t *testing.T, app core.App, collection string, fields map[string]any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatalf("failed to find %s collection: %v", collection, err)
	}
	record := core.NewRecord(col)
	for k, v := range fields {
		record.Set(k, v)
	}
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test %s record: %v", collection, err)
	}
	return record
}

// CreateTestOrganization creates an organization with the given name.
func CreateTestOrganization(t *testing.T, app core.App, name string) *core.Record {
	t.Helper()
	return save(t, app, "organizations", map[string]any{
		"name":           name,
		"contact_number": "+91 90000 00000",
		"email":          "hello@example.com",
		"address":        "1 Test Street, Mumbai",
		"quote_prefix":   "TST",
	})
}

// CreateTestUser creates an auth user belonging to orgID with role.
func CreateTestUser(t *testing.T, app core.App, orgID, role string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("users")
	if err != nil {
		t.Fatalf("failed to find users collection: %v", err)
	}
	record := core.NewRecord(col)
	record.SetEmail(fmt.Sprintf("user%d@example.com", userSeq.Add(1)))
	record.SetPassword("password123456")
	record.Set("organization", orgID)
	record.Set("role", role)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test user: %v", err)
	}
	return record
}

// CreateTestFamily creates a product family.
func CreateTestFamily(t *testing.T, app core.App, orgID, name string, baseMargin float64) *core.Record {
	t.Helper()
	return save(t, app, "product_families", map[string]any{
		"organization": orgID,
		"name":         name,
		"category":     "General",
		"base_margin":  baseMargin,
	})
}

// CreateTestProduct creates a product, optionally in a family.
func CreateTestProduct(t *testing.T, app core.App, orgID, familyID, name string, price float64, custom map[string]any) *core.Record {
	t.Helper()
	fields := map[string]any{
		"organization": orgID,
		"name":         name,
		"price":        price,
		"family":       familyID,
	}
	if custom != nil {
		fields["custom_fields"] = custom
	}
	return save(t, app, "products", fields)
}

// CreateTestCustomer creates a customer.
func CreateTestCustomer(t *testing.T, app core.App, orgID, name string) *core.Record {
	t.Helper()
	return save(t, app, "customers", map[string]any{
		"organization": orgID,
		"name":         name,
		"email":        "buyer@example.com",
	})
}

// CreateTestTemplate creates a template from key/label pairs.
func CreateTestTemplate(t *testing.T, app core.App, orgID, name string, columns ...[2]string) *core.Record {
	t.Helper()
	cols := make([]map[string]string, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, map[string]string{"key": c[0], "label": c[1]})
	}
	return save(t, app, "templates", map[string]any{
		"organization": orgID,
		"name":         name,
		"columns":      cols,
	})
}

// SetTestCustomColumns stores the organization's custom column list.
func SetTestCustomColumns(t *testing.T, app core.App, orgID string, columns []map[string]any) *core.Record {
	t.Helper()
	return save(t, app, "org_settings", map[string]any{
		"organization":   orgID,
		"custom_columns": columns,
	})
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// CreateTestQuote creates a DRAFT quote with no families.
func CreateTestQuote(t *testing.T, app core.App, orgID, displayID, customerName string) *core.Record {
	t.Helper()
	return save(t, app, "quotes", map[string]any{
		"organization":  orgID,
		"display_id":    displayID,
		"customer_name": customerName,
		"families":      []any{},
		"status":        collections.StatusDraft,
	})
}
