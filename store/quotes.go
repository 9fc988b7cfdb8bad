package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"quotedesk/services"
)

// QuoteSummary is a quote row for list views.
type QuoteSummary struct {
	ID           string               `json:"id"`
	DisplayID    string               `json:"display_id"`
	CustomerName string               `json:"customer_name"`
	TotalAmount  float64              `json:"total_amount"`
	Status       services.QuoteStatus `json:"status"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func quoteFromRecord(rec *core.Record) (services.Quote, error) {
	q := services.Quote{
		ID:        rec.Id,
		DisplayID: rec.GetString("display_id"),
		Customer: services.Customer{
			ID:      rec.GetString("customer"),
			Name:    rec.GetString("customer_name"),
			Email:   rec.GetString("customer_email"),
			Phone:   rec.GetString("customer_phone"),
			Address: rec.GetString("customer_address"),
		},
		TotalAmount: rec.GetFloat("total_amount"),
		Status:      services.QuoteStatus(rec.GetString("status")),
		TemplateID:  rec.GetString("template"),
		DocumentKey: rec.GetString("document_key"),
		DocumentURL: rec.GetString("document_url"),
		CreatedAt:   rec.GetDateTime("created").Time(),
		UpdatedAt:   rec.GetDateTime("updated").Time(),
	}
	if err := decodeJSONField(rec, "families", &q.Families); err != nil {
		return services.Quote{}, err
	}
	return q, nil
}

// ListQuotes returns the organization's quotes, most recently updated first.
func (s *Store) ListQuotes(orgID string) ([]QuoteSummary, error) {
	records, err := s.list("quotes", orgID, "-updated")
	if err != nil {
		return nil, err
	}
	out := make([]QuoteSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, QuoteSummary{
			ID:           rec.Id,
			DisplayID:    rec.GetString("display_id"),
			CustomerName: rec.GetString("customer_name"),
			TotalAmount:  rec.GetFloat("total_amount"),
			Status:       services.QuoteStatus(rec.GetString("status")),
			UpdatedAt:    rec.GetDateTime("updated").Time(),
		})
	}
	return out, nil
}

// GetQuote loads a full quote snapshot.
func (s *Store) GetQuote(orgID, id string) (services.Quote, error) {
	rec, err := s.find("quotes", orgID, id)
	if err != nil {
		return services.Quote{}, err
	}
	return quoteFromRecord(rec)
}

// SaveQuote validates q, recomputes its totals and stores it. A quote
// without an id is created and numbered; an existing one is updated in
// place. Either way the saved quote is a DRAFT and any previously generated
// document is detached.
func (s *Store) SaveQuote(orgID string, q services.Quote) (services.Quote, error) {
	if err := services.ValidateForSave(q); err != nil {
		return services.Quote{}, err
	}
	q = services.Recompute(q)

	if q.TemplateID != "" {
		if _, err := s.find("templates", orgID, q.TemplateID); err != nil {
			return services.Quote{}, services.NewValidationError("template_id", "unknown template")
		}
	}
	customerID := ""
	if q.Customer.ID != "" {
		if _, err := s.find("customers", orgID, q.Customer.ID); err == nil {
			customerID = q.Customer.ID
		}
	}

	var saved services.Quote
	err := s.app.RunInTransaction(func(txApp core.App) error {
		var rec *core.Record
		if q.ID == "" {
			col, err := txApp.FindCollectionByNameOrId("quotes")
			if err != nil {
				return fmt.Errorf("find quotes collection: %w", err)
			}
			rec = core.NewRecord(col)
			rec.Set("organization", orgID)

			org, err := s.Organization(orgID)
			if err != nil {
				return err
			}
			displayID, err := services.GenerateQuoteNumber(txApp, orgID, org.QuotePrefix, s.now())
			if err != nil {
				return err
			}
			rec.Set("display_id", displayID)
		} else {
			var err error
			if rec, err = findRecord(txApp, "quotes", orgID, q.ID); err != nil {
				return err
			}
			prev, err := quoteFromRecord(rec)
			if err != nil {
				return err
			}
			q = services.KeepMargins(q, prev.Families)
		}

		families := q.Families
		if families == nil {
			families = []services.QuoteFamily{}
		}
		rec.Set("customer", customerID)
		rec.Set("customer_name", q.Customer.Name)
		rec.Set("customer_email", q.Customer.Email)
		rec.Set("customer_phone", q.Customer.Phone)
		rec.Set("customer_address", q.Customer.Address)
		rec.Set("families", families)
		rec.Set("total_amount", q.TotalAmount)
		rec.Set("status", string(services.StatusDraft))
		rec.Set("template", q.TemplateID)
		rec.Set("document_key", "")
		rec.Set("document_url", "")
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("save quote: %w", err)
		}

		var err error
		saved, err = quoteFromRecord(rec)
		return err
	})
	if err != nil {
		return services.Quote{}, err
	}
	log.Info().Str("area", "quotes").Str("org", orgID).Str("quote", saved.ID).
		Str("display_id", saved.DisplayID).Float64("total", saved.TotalAmount).Msg("quote saved")
	return saved, nil
}

// DeleteQuote removes a quote.
func (s *Store) DeleteQuote(orgID, id string) error {
	return s.remove("quotes", orgID, id)
}

// MarkFinalized records the stored document and moves the quote to FINALIZED.
func (s *Store) MarkFinalized(ctx context.Context, orgID, quoteID, key, link string) error {
	rec, err := s.find("quotes", orgID, quoteID)
	if err != nil {
		return err
	}
	rec.Set("status", string(services.StatusFinalized))
	rec.Set("document_key", key)
	rec.Set("document_url", link)
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return fmt.Errorf("finalize quote %s: %w", quoteID, err)
	}
	return nil
}

// RenderInput gathers everything needed to draw a quote. templateID overrides
// the quote's own template; with neither set the organization default is used.
func (s *Store) RenderInput(orgID, quoteID, templateID string) (services.RenderInput, error) {
	q, err := s.GetQuote(orgID, quoteID)
	if err != nil {
		return services.RenderInput{}, err
	}
	return s.RenderInputFor(orgID, q, templateID)
}

// RenderInputFor is RenderInput for an unsaved quote snapshot.
func (s *Store) RenderInputFor(orgID string, q services.Quote, templateID string) (services.RenderInput, error) {
	org, err := s.Organization(orgID)
	if err != nil {
		return services.RenderInput{}, err
	}
	custom, err := s.CustomColumns(orgID)
	if err != nil {
		return services.RenderInput{}, err
	}

	if templateID == "" {
		templateID = q.TemplateID
	}
	var tmpl *services.Template
	if templateID != "" {
		t, err := s.GetTemplate(orgID, templateID)
		if err != nil {
			return services.RenderInput{}, err
		}
		tmpl = &t
	} else if tmpl, err = s.DefaultTemplate(orgID); err != nil {
		return services.RenderInput{}, err
	}

	return services.RenderInput{Quote: q, Org: org, Template: tmpl, Custom: custom}, nil
}
