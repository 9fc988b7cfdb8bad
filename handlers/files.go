package handlers

import (
	"net/http"
	"path"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/storage"
)

// HandleDocumentDownload serves a document from the local store. Access is
// granted by the signed token alone, so links work outside the app session.
func HandleDocumentDownload(files *storage.LocalStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := e.Request.PathValue("key")
		if err := files.Verify(key, e.Request.URL.Query().Get("token")); err != nil {
			return e.JSON(http.StatusForbidden, errorBody{Error: "link is invalid or has expired"})
		}
		data, err := files.Get(key)
		if err != nil {
			return respondError(e, err, "Failed to read document")
		}
		e.Response.Header().Set("Content-Disposition", `inline; filename="`+path.Base(key)+`"`)
		e.Response.Header().Set("Cache-Control", "private, no-store")
		return e.Blob(http.StatusOK, "application/pdf", data)
	}
}
