package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumenbrowser/lumen/internal/testutil"
)

func testRouter(t *testing.T, authToken string) http.Handler {
	t.Helper()
	reg := testutil.TestRegistry(t)
	return NewRouter(reg, authToken != "", authToken)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func openProfile(t *testing.T, router http.Handler, id, typ string) {
	t.Helper()
	rr := doJSON(t, router, http.MethodPost, "/users", map[string]string{"id": id, "type": typ})
	if rr.Code != http.StatusCreated {
		t.Fatalf("open profile: %d %s", rr.Code, rr.Body.String())
	}
}

func TestOpenListCloseProfile(t *testing.T) {
	router := testRouter(t, "")

	openProfile(t, router, "alice", "normal")

	rr := doJSON(t, router, http.MethodGet, "/users", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: %d", rr.Code)
	}
	resp := decode[map[string][]UserResponse](t, rr)
	if len(resp["users"]) != 1 || resp["users"][0].ID != "alice" {
		t.Errorf("users = %+v", resp["users"])
	}

	rr = doJSON(t, router, http.MethodDelete, "/users/alice", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("close: %d", rr.Code)
	}
	rr = doJSON(t, router, http.MethodDelete, "/users/alice", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("double close: %d", rr.Code)
	}
}

func TestProfileScoping(t *testing.T) {
	router := testRouter(t, "")
	openProfile(t, router, "alice", "normal")
	openProfile(t, router, "bob", "normal")

	rr := doJSON(t, router, http.MethodPost, "/users/alice/bookmarks",
		map[string]any{"url": "https://a.com", "title": "A"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, http.MethodGet, "/users/bob/bookmarks", nil)
	resp := decode[map[string][]json.RawMessage](t, rr)
	if len(resp["bookmarks"]) != 0 {
		t.Error("bob can see alice's bookmarks")
	}

	rr = doJSON(t, router, http.MethodGet, "/users/carol/bookmarks", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unopened profile: %d", rr.Code)
	}
}

func TestBookmarkCRUD(t *testing.T) {
	router := testRouter(t, "")
	openProfile(t, router, "alice", "normal")

	rr := doJSON(t, router, http.MethodPost, "/users/alice/bookmarks",
		map[string]any{"url": "https://a.com", "title": "A"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", rr.Code, rr.Body.String())
	}
	created := decode[map[string]any](t, rr)
	id, _ := created["_id"].(string)
	if id == "" {
		t.Fatalf("no id in %v", created)
	}

	rr = doJSON(t, router, http.MethodPatch, "/users/alice/bookmarks/"+id,
		map[string]any{"title": "B"})
	if rr.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rr.Code, rr.Body.String())
	}
	updated := decode[map[string]any](t, rr)
	if updated["title"] != "B" {
		t.Errorf("title = %v", updated["title"])
	}

	rr = doJSON(t, router, http.MethodDelete, "/users/alice/bookmarks/"+id, nil)
	if rr.Code != http.StatusOK || !decode[RemovedResponse](t, rr).Removed {
		t.Errorf("delete: %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, http.MethodDelete, "/users/alice/bookmarks/"+id, nil)
	if rr.Code != http.StatusOK || decode[RemovedResponse](t, rr).Removed {
		t.Errorf("second delete should report removed=false: %s", rr.Body.String())
	}
}

func TestBookmarkValidation(t *testing.T) {
	router := testRouter(t, "")
	openProfile(t, router, "alice", "normal")

	rr := doJSON(t, router, http.MethodPost, "/users/alice/bookmarks",
		map[string]any{"title": "no url"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("draft without url: %d", rr.Code)
	}

	rr = doJSON(t, router, http.MethodPost, "/users/alice/bookmarks",
		map[string]any{"title": "Reading list", "isFolder": true})
	if rr.Code != http.StatusCreated {
		t.Errorf("folder draft rejected: %d %s", rr.Code, rr.Body.String())
	}
}

func TestHistoryEndpoints(t *testing.T) {
	router := testRouter(t, "")
	openProfile(t, router, "alice", "normal")

	rr := doJSON(t, router, http.MethodPost, "/users/alice/history",
		map[string]any{"url": "https://example.com", "title": "Example"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", rr.Code, rr.Body.String())
	}

	// Same URL on the same day merges into the existing entry.
	rr = doJSON(t, router, http.MethodPost, "/users/alice/history",
		map[string]any{"url": "https://example.com", "title": "Example 2"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("second add: %d", rr.Code)
	}

	rr = doJSON(t, router, http.MethodGet, "/users/alice/history", nil)
	list := decode[map[string][]json.RawMessage](t, rr)
	if len(list["history"]) != 1 {
		t.Errorf("history has %d entries, want 1", len(list["history"]))
	}

	rr = doJSON(t, router, http.MethodGet, "/users/alice/history/groups", nil)
	groups := decode[map[string][]json.RawMessage](t, rr)
	if len(groups["groups"]) != 1 {
		t.Errorf("groups = %d, want 1", len(groups["groups"]))
	}

	rr = doJSON(t, router, http.MethodPost, "/users/alice/history",
		map[string]any{"url": "lumen://settings"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("internal page: %d", rr.Code)
	}
}

func TestSiteEndpoints(t *testing.T) {
	router := testRouter(t, "")
	openProfile(t, router, "alice", "normal")

	rr := doJSON(t, router, http.MethodPost, "/users/alice/sites", map[string]any{
		"origin": "https://a.com", "kind": "permission",
		"permissionType": "camera", "granted": true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, http.MethodGet,
		"/users/alice/sites/permission?origin=https%3A%2F%2Fa.com&type=camera", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("lookup: %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, http.MethodGet, "/users/alice/sites?kind=cookie", nil)
	resp := decode[map[string][]json.RawMessage](t, rr)
	if len(resp["sites"]) != 0 {
		t.Error("cookie view should be empty")
	}

	rr = doJSON(t, router, http.MethodPost, "/users/alice/sites", map[string]any{
		"origin": "https://a.com", "kind": "permission",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid subtype shape: %d", rr.Code)
	}
}

func TestIncognitoExtensionsConflict(t *testing.T) {
	router := testRouter(t, "")
	openProfile(t, router, "ghost", "incognito")

	rr := doJSON(t, router, http.MethodGet, "/users/ghost/extensions", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("extensions on incognito: %d %s", rr.Code, rr.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := testRouter(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing token: %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("valid token: %d", rr.Code)
	}
}
