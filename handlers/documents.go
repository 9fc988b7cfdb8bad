package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
	"quotedesk/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// documentFilename builds a download name from the quote's display id.
func documentFilename(q services.Quote, ext string) string {
	name := q.DisplayID
	if name == "" {
		name = "quote-" + q.ID
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return name + "." + ext
}

// HandleQuotePDF renders the quote and streams it without changing its state.
// ?template= overrides the quote's own template; ?inline=1 opens it in the
// browser instead of downloading.
func HandleQuotePDF(s *store.Store, docs *services.DocumentService) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		in, err := s.RenderInput(id.OrgID, e.Request.PathValue("id"), e.Request.URL.Query().Get("template"))
		if err != nil {
			return respondError(e, err, "Failed to generate document")
		}
		pdf, err := docs.RenderPDF(e.Request.Context(), in)
		if err != nil {
			return respondError(e, err, "Failed to generate document")
		}

		disposition := "attachment"
		if e.Request.URL.Query().Get("inline") == "1" {
			disposition = "inline"
		}
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`%s; filename="%s"`, disposition, documentFilename(in.Quote, "pdf")))
		return e.Blob(http.StatusOK, "application/pdf", pdf)
	})
}

// HandleQuoteExcel exports the quote as a spreadsheet.
func HandleQuoteExcel(s *store.Store, docs *services.DocumentService) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		in, err := s.RenderInput(id.OrgID, e.Request.PathValue("id"), e.Request.URL.Query().Get("template"))
		if err != nil {
			return respondError(e, err, "Failed to generate spreadsheet")
		}
		data, err := docs.RenderExcel(e.Request.Context(), in)
		if err != nil {
			return respondError(e, err, "Failed to generate spreadsheet")
		}
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, documentFilename(in.Quote, "xlsx")))
		return e.Blob(http.StatusOK, xlsxContentType, data)
	})
}

// HandleQuotePreview renders the HTML preview of a saved quote. Pages break
// where the PDF's do.
func HandleQuotePreview(s *store.Store, docs *services.DocumentService) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		in, err := s.RenderInput(id.OrgID, e.Request.PathValue("id"), e.Request.URL.Query().Get("template"))
		if err != nil {
			return respondError(e, err, "Failed to render preview")
		}
		doc, logo := docs.Preview(e.Request.Context(), in)

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		e.Response.WriteHeader(http.StatusOK)
		return services.RenderQuotePreview(doc, logo).Render(e.Request.Context(), e.Response)
	})
}

// HandleQuoteFinalize renders the final PDF, stores it and marks the quote
// FINALIZED.
func HandleQuoteFinalize(s *store.Store, docs *services.DocumentService) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		in, err := s.RenderInput(id.OrgID, e.Request.PathValue("id"), e.Request.URL.Query().Get("template"))
		if err != nil {
			return respondError(e, err, "Failed to generate document")
		}
		res, err := docs.Finalize(e.Request.Context(), id.OrgID, in)
		if err != nil {
			return respondError(e, err, "Failed to generate document")
		}
		successToast(e, "Document generated")
		return e.JSON(http.StatusOK, res)
	})
}

// HandleQuoteDocumentURL returns a fresh time-limited link to the quote's
// stored document.
func HandleQuoteDocumentURL(s *store.Store, docs *services.DocumentService) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		q, err := s.GetQuote(id.OrgID, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, err, "Failed to sign document url")
		}
		if q.Status != services.StatusFinalized || q.DocumentKey == "" {
			return respondError(e, store.ErrNotFound, "")
		}
		link, err := docs.SignedURL(e.Request.Context(), q.DocumentKey)
		if err != nil {
			return respondError(e, err, "Failed to sign document url")
		}
		return e.JSON(http.StatusOK, map[string]string{"url": link})
	})
}
