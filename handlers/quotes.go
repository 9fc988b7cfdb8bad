package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
	"quotedesk/store"
)

// HandleQuoteList returns the organization's quotes, newest first.
func HandleQuoteList(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		quotes, err := s.ListQuotes(id.OrgID)
		if err != nil {
			return respondError(e, err, "Failed to load quotes")
		}
		return e.JSON(http.StatusOK, quotes)
	})
}

// HandleQuoteGet returns one quote snapshot.
func HandleQuoteGet(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		q, err := s.GetQuote(id.OrgID, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, err, "Failed to load quote")
		}
		return e.JSON(http.StatusOK, q)
	})
}

// HandleQuoteSave creates a quote (POST /api/quotes) or replaces an existing
// one (PUT /api/quotes/{id}). The body is the full quote snapshot.
func HandleQuoteSave(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		var q services.Quote
		if err := e.BindBody(&q); err != nil {
			return badRequest(e, "invalid quote body")
		}
		q.ID = e.Request.PathValue("id")
		created := q.ID == ""

		saved, err := s.SaveQuote(id.OrgID, q)
		if err != nil {
			return respondError(e, err, "Failed to save quote")
		}

		successToast(e, "Quote "+saved.DisplayID+" saved")
		if created {
			return e.JSON(http.StatusCreated, saved)
		}
		return e.JSON(http.StatusOK, saved)
	})
}

// HandleQuoteDelete removes a quote.
func HandleQuoteDelete(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		if err := s.DeleteQuote(id.OrgID, e.Request.PathValue("id")); err != nil {
			return respondError(e, err, "Failed to delete quote")
		}
		successToast(e, "Quote deleted")
		return e.NoContent(http.StatusNoContent)
	})
}
