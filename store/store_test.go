package store

import (
	"errors"
	"testing"
	"time"

	"quotedesk/services"
	"quotedesk/testhelpers"
)

func newTestStore(t *testing.T) (*Store, string, string) {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	orgA := testhelpers.CreateTestOrganization(t, app, "Org A")
	orgB := testhelpers.CreateTestOrganization(t, app, "Org B")
	s := New(app)
	s.now = func() time.Time { return time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC) }
	return s, orgA.Id, orgB.Id
}

func TestOrganization(t *testing.T) {
	s, orgA, _ := newTestStore(t)

	org, err := s.Organization(orgA)
	if err != nil {
		t.Fatalf("Organization error: %v", err)
	}
	if org.Name != "Org A" || org.QuotePrefix != "TST" {
		t.Errorf("org = %+v", org)
	}

	if _, err := s.Organization("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing org err = %v, want ErrNotFound", err)
	}
}

func TestCustomers_ScopedToOrganization(t *testing.T) {
	s, orgA, orgB := newTestStore(t)

	c, err := s.SaveCustomer(orgA, services.Customer{Name: "  Acme Corp ", Phone: "123"})
	if err != nil {
		t.Fatalf("SaveCustomer error: %v", err)
	}
	if c.ID == "" || c.Name != "Acme Corp" {
		t.Errorf("saved customer = %+v", c)
	}

	if _, err := s.GetCustomer(orgB, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-org get err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteCustomer(orgB, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-org delete err = %v, want ErrNotFound", err)
	}
	if list, _ := s.ListCustomers(orgB); len(list) != 0 {
		t.Errorf("org B customers = %d, want 0", len(list))
	}

	c.Email = "buyer@acme.example"
	if _, err := s.SaveCustomer(orgA, c); err != nil {
		t.Fatalf("update customer: %v", err)
	}
	got, err := s.GetCustomer(orgA, c.ID)
	if err != nil || got.Email != "buyer@acme.example" {
		t.Errorf("updated customer = %+v, %v", got, err)
	}

	if _, err := s.SaveCustomer(orgA, services.Customer{Name: " "}); !errors.Is(err, services.ErrValidation) {
		t.Errorf("blank name err = %v, want validation error", err)
	}

	if err := s.DeleteCustomer(orgA, c.ID); err != nil {
		t.Fatalf("DeleteCustomer error: %v", err)
	}
	if list, _ := s.ListCustomers(orgA); len(list) != 0 {
		t.Errorf("customers after delete = %d, want 0", len(list))
	}
}
