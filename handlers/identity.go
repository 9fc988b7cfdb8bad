package handlers

import (
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
)

// Identity is the caller as seen by the API: a user acting inside exactly one
// organization.
type Identity struct {
	UserID string
	OrgID  string
	Role   string
}

// IsAdmin reports whether the caller administers their organization.
func (i Identity) IsAdmin() bool { return i.Role == collections.RoleAdmin }

// identify reads the authenticated user from e. Superusers and other auth
// collections have no organization and are refused.
func identify(e *core.RequestEvent) (Identity, error) {
	if e.Auth == nil {
		return Identity{}, errUnauthenticated
	}
	if e.Auth.Collection().Name != "users" {
		return Identity{}, errNoOrganization
	}
	orgID := e.Auth.GetString("organization")
	if orgID == "" {
		return Identity{}, errNoOrganization
	}
	role := e.Auth.GetString("role")
	if role == "" {
		role = collections.RoleMember
	}
	return Identity{UserID: e.Auth.Id, OrgID: orgID, Role: role}, nil
}

// withIdentity adapts a handler that needs the caller's identity.
func withIdentity(next func(e *core.RequestEvent, id Identity) error) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, err := identify(e)
		if err != nil {
			return respondError(e, err, "")
		}
		return next(e, id)
	}
}

// adminOnly is withIdentity restricted to organization admins.
func adminOnly(next func(e *core.RequestEvent, id Identity) error) func(*core.RequestEvent) error {
	return withIdentity(func(e *core.RequestEvent, id Identity) error {
		if !id.IsAdmin() {
			return respondError(e, errAdminOnly, "")
		}
		return next(e, id)
	})
}
