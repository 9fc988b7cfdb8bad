package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
	"quotedesk/services"
	"quotedesk/storage"
	"quotedesk/store"
	"quotedesk/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// testEnv is one organization with an admin and a member, wired to a local
// document store under a temp dir.
type testEnv struct {
	app    *pocketbase.PocketBase
	store  *store.Store
	docs   *services.DocumentService
	files  *storage.LocalStore
	orgID  string
	admin  *core.Record
	member *core.Record
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	org := testhelpers.CreateTestOrganization(t, app, "Brightline")

	files, err := storage.NewLocalStore(t.TempDir(), "http://docs.test", "test-secret")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	s := store.New(app)
	return &testEnv{
		app:   app,
		store: s,
		files: files,
		docs: &services.DocumentService{
			Pool:      services.NewRenderPool(2, 30*time.Second),
			Logos:     services.NewLogoLoader(time.Second),
			Storage:   files,
			Quotes:    s,
			SignedTTL: 10 * time.Minute,
		},
		orgID:  org.Id,
		admin:  testhelpers.CreateTestUser(t, app, org.Id, collections.RoleAdmin),
		member: testhelpers.CreateTestUser(t, app, org.Id, collections.RoleMember),
	}
}

// call runs handler as user and returns the recorder. body is JSON-encoded
// unless it is already an io.Reader.
func (env *testEnv) call(t *testing.T, handler func(*core.RequestEvent) error, user *core.Record, method, target string, body any, pathValues ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		r = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if _, isReader := body.(io.Reader); body != nil && !isReader {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(env.app, req, rec)
	e.Auth = user
	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

// seedCatalog adds one family with one product and returns the family id.
func (env *testEnv) seedCatalog(t *testing.T) string {
	t.Helper()
	fam := testhelpers.CreateTestFamily(t, env.app, env.orgID, "Lighting", 0.15)
	testhelpers.CreateTestProduct(t, env.app, env.orgID, fam.Id, "Desk Lamp", 100, map[string]any{"brand": "Lumo"})
	return fam.Id
}

// savedQuote stores a quote with the seeded family and returns it.
func (env *testEnv) savedQuote(t *testing.T) services.Quote {
	t.Helper()
	famID := env.seedCatalog(t)
	sels, err := env.store.FamilySelections(env.orgID, []string{famID})
	if err != nil {
		t.Fatalf("FamilySelections: %v", err)
	}
	q := services.AddFamilies(services.Quote{Customer: services.Customer{Name: "Acme"}}, sels)
	saved, err := env.store.SaveQuote(env.orgID, q)
	if err != nil {
		t.Fatalf("SaveQuote: %v", err)
	}
	return saved
}
