package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
	"quotedesk/store"
)

// HandleTemplateList returns the organization's templates.
func HandleTemplateList(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		list, err := s.ListTemplates(id.OrgID)
		if err != nil {
			return respondError(e, err, "Failed to load templates")
		}
		return e.JSON(http.StatusOK, list)
	})
}

// HandleTemplateGet returns one template.
func HandleTemplateGet(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		t, err := s.GetTemplate(id.OrgID, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, err, "Failed to load template")
		}
		return e.JSON(http.StatusOK, t)
	})
}

// HandleTemplateSave creates or updates a template.
func HandleTemplateSave(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		var t services.Template
		if err := e.BindBody(&t); err != nil {
			return badRequest(e, "invalid template body")
		}
		t.ID = e.Request.PathValue("id")
		created := t.ID == ""

		saved, err := s.SaveTemplate(id.OrgID, t)
		if err != nil {
			return respondError(e, err, "Failed to save template")
		}
		successToast(e, "Template saved")
		if created {
			return e.JSON(http.StatusCreated, saved)
		}
		return e.JSON(http.StatusOK, saved)
	})
}

// HandleTemplateDelete removes a template.
func HandleTemplateDelete(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		if err := s.DeleteTemplate(id.OrgID, e.Request.PathValue("id")); err != nil {
			return respondError(e, err, "Failed to delete template")
		}
		successToast(e, "Template deleted")
		return e.NoContent(http.StatusNoContent)
	})
}
