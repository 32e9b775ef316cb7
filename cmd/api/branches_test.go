package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"elshome/internal/domain/branches"
	"elshome/internal/domain/roles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ta *testApp) seedBranch(t *testing.T, name string) int64 {
	t.Helper()

	b := &branches.Branch{Name: name, Address: "1-1 Example, Tokyo"}
	require.NoError(t, ta.branches.Create(context.Background(), b))
	return b.ID
}

func TestListBranchesIsPublic(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	ta.seedBranch(t, "Shinjuku")

	req := httptest.NewRequest(http.MethodGet, "/v1/branches/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Shinjuku")
}

func TestUpdateBranchTagsNeedsBranchTagsRole(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	branchID := ta.seedBranch(t, "Shinjuku")

	// can_write alone is not enough for the tag surface.
	userID := ta.addUser(t, "writer@example.com", &roles.Record{Role: roles.RoleVisitor, CanWrite: true})
	cookies := ta.signIn(t, userID)

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/v1/branches/%d/tags", branchID),
		jsonBody(t, map[string][]string{"tags": {"atm", "parking"}}))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpdateBranchTagsWithBranchTagsRole(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	branchID := ta.seedBranch(t, "Shinjuku")

	userID := ta.addUser(t, "tagger@example.com", &roles.Record{Role: roles.RoleBranchTags})
	cookies := ta.signIn(t, userID)

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/v1/branches/%d/tags", branchID),
		jsonBody(t, map[string][]string{"tags": {"atm", "parking"}}))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	list, err := ta.branches.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"atm", "parking"}, list[0].Tags)
}

func TestUpdateBranchTagsAsAdmin(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	branchID := ta.seedBranch(t, "Shinjuku")

	adminID := ta.addUser(t, "admin@example.com", &roles.Record{Role: roles.RoleAdmin})
	cookies := ta.signIn(t, adminID)

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/v1/branches/%d/tags", branchID),
		jsonBody(t, map[string][]string{"tags": {"fx"}}))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUpdateTagsOnUnknownBranchIs404(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	userID := ta.addUser(t, "tagger@example.com", &roles.Record{Role: roles.RoleBranchTags})
	cookies := ta.signIn(t, userID)

	req := httptest.NewRequest(http.MethodPatch, "/v1/branches/999/tags",
		jsonBody(t, map[string][]string{"tags": {"atm"}}))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateBranchIsAdminOnly(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	userID := ta.addUser(t, "tagger@example.com", &roles.Record{Role: roles.RoleBranchTags})
	cookies := ta.signIn(t, userID)

	req := httptest.NewRequest(http.MethodPost, "/v1/branches/",
		jsonBody(t, map[string]string{"name": "Umeda", "address": "2-2 Example, Osaka"}))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
