package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"quotedesk/services"
	"quotedesk/storage"
	"quotedesk/store"
)

var (
	errUnauthenticated = errors.New("authentication required")
	errNoOrganization  = errors.New("user does not belong to an organization")
	errAdminOnly       = errors.New("only organization admins can do this")
)

// errorBody is the JSON error shape returned by every API route.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// classify maps err to a status code and the body shown to the caller.
// Unexpected errors are reported with fallback rather than their text.
func classify(err error, fallback string) (int, errorBody) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field}
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: err.Error()}
	case errors.Is(err, errNoOrganization), errors.Is(err, errAdminOnly):
		return http.StatusForbidden, errorBody{Error: err.Error()}
	case errors.Is(err, store.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}
	case errors.Is(err, services.ErrConfirmationRequired):
		return http.StatusConflict, errorBody{Error: err.Error()}
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrIndexOutOfRange),
		errors.Is(err, services.ErrFieldNotEditable):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, services.ErrStorageDisabled):
		return http.StatusServiceUnavailable, errorBody{Error: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorBody{Error: "the renderer is busy, try again shortly"}
	}
	return http.StatusInternalServerError, errorBody{Error: fallback}
}

// respondError writes err to the client. HTMX callers get a toast instead of
// a body swap.
func respondError(e *core.RequestEvent, err error, fallback string) error {
	status, body := classify(err, fallback)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("area", "http").Str("method", e.Request.Method).
			Str("path", e.Request.URL.Path).Int("status", status).Msg("request failed")
	}
	if isHTMX(e) {
		return ErrorToast(e, status, body.Error)
	}
	return e.JSON(status, body)
}

func badRequest(e *core.RequestEvent, message string) error {
	return respondError(e, services.NewValidationError("body", message), "")
}
