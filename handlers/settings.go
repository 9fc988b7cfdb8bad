package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
	"quotedesk/store"
)

type columnsResponse struct {
	Custom   []services.Column `json:"custom_columns"`
	Registry []services.Column `json:"registry"`
}

func columnsPayload(s *store.Store, orgID string) (columnsResponse, error) {
	custom, err := s.CustomColumns(orgID)
	if err != nil {
		return columnsResponse{}, err
	}
	if custom == nil {
		custom = []services.Column{}
	}
	return columnsResponse{Custom: custom, Registry: services.NewRegistry(custom).Columns()}, nil
}

// HandleColumnsGet returns the organization's custom columns and the full
// registry they resolve to.
func HandleColumnsGet(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		resp, err := columnsPayload(s, id.OrgID)
		if err != nil {
			return respondError(e, err, "Failed to load columns")
		}
		return e.JSON(http.StatusOK, resp)
	})
}

// HandleColumnsSave replaces the custom column list. Admins only.
func HandleColumnsSave(s *store.Store) func(*core.RequestEvent) error {
	return adminOnly(func(e *core.RequestEvent, id Identity) error {
		var body struct {
			Columns []services.Column `json:"custom_columns"`
		}
		if err := e.BindBody(&body); err != nil {
			return badRequest(e, "invalid columns body")
		}
		if _, err := s.SaveCustomColumns(id.OrgID, body.Columns); err != nil {
			return respondError(e, err, "Failed to save columns")
		}
		resp, err := columnsPayload(s, id.OrgID)
		if err != nil {
			return respondError(e, err, "Failed to load columns")
		}
		successToast(e, "Columns saved")
		return e.JSON(http.StatusOK, resp)
	})
}

// HandleColumnsResolved returns the template editor's column list: the
// chosen template's selection first, then every other registry column
// unselected. Without ?template= the organization default (or the built-in
// default selection) is used.
func HandleColumnsResolved(s *store.Store) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		reg, err := s.Registry(id.OrgID)
		if err != nil {
			return respondError(e, err, "Failed to load columns")
		}

		var tmpl *services.Template
		if tid := e.Request.URL.Query().Get("template"); tid != "" {
			t, err := s.GetTemplate(id.OrgID, tid)
			if err != nil {
				return respondError(e, err, "Failed to load template")
			}
			tmpl = &t
		} else if tmpl, err = s.DefaultTemplate(id.OrgID); err != nil {
			return respondError(e, err, "Failed to load template")
		}

		return e.JSON(http.StatusOK, services.ResolveForTemplate(tmpl, reg))
	})
}

// HandleUnitOptions lists the unit types offered by the item editor.
func HandleUnitOptions() func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, _ Identity) error {
		return e.JSON(http.StatusOK, services.UnitTypeOptions)
	})
}
