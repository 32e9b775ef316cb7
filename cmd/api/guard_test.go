package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"elshome/internal/domain/roles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireLoginRedirect(t *testing.T, rr *httptest.ResponseRecorder, wantNext, wantReason string) {
	t.Helper()

	require.Equal(t, http.StatusFound, rr.Code, "guarded paths must never answer 200 to unauthorized callers")

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)

	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, wantNext, loc.Query().Get("next"))
	assert.Equal(t, wantReason, loc.Query().Get("error"))
}

func TestAnonymousAdminPathRedirectsToLogin(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	requireLoginRedirect(t, rr, "/admin/users", reasonLoginRequired)
}

func TestVisitorAdminPathRedirectsWithNoPermission(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	userID := ta.addUser(t, "visitor@example.com", &roles.Record{Role: roles.RoleVisitor})
	cookies := ta.signIn(t, userID)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	requireLoginRedirect(t, rr, "/admin", reasonNoPermission)
}

func TestAdminPathPassesForAdmin(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	userID := ta.addUser(t, "admin@example.com", &roles.Record{Role: roles.RoleAdmin, CanWrite: true})
	cookies := ta.signIn(t, userID)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRoleLookupFailureFailsClosed(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	userID := ta.addUser(t, "admin@example.com", &roles.Record{Role: roles.RoleAdmin})
	cookies := ta.signIn(t, userID)

	// Role store goes down between sign-in and this request: the guard
	// must degrade the caller to visitor, never let them through.
	ta.roles.err = errors.New("connection refused")

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	requireLoginRedirect(t, rr, "/admin/users", reasonNoPermission)
}

func TestMypageRequiresIdentity(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	req := httptest.NewRequest(http.MethodGet, "/employees/mypage/", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	requireLoginRedirect(t, rr, "/employees/mypage/", reasonLoginRequired)
}

func TestMypagePassesForAnyAuthenticatedRole(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	// No role row at all: still an authenticated identity, which is all
	// the members-only pattern requires.
	userID := ta.addUser(t, "employee@example.com", nil)
	cookies := ta.signIn(t, userID)

	req := httptest.NewRequest(http.MethodGet, "/employees/mypage/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUnguardedPathPassesAnonymously(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGuardReevaluatesEveryRequest(t *testing.T) {
	ta := newTestApplication(t)
	mux := ta.mount()

	userID := ta.addUser(t, "admin@example.com", &roles.Record{Role: roles.RoleAdmin})
	cookies := ta.signIn(t, userID)

	doGet := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, doGet().Code)

	// Revoke the grant; the very next request must be denied even though
	// the session itself is still valid.
	require.NoError(t, ta.roles.Set(t.Context(), roles.Record{UserID: userID, Role: roles.RoleVisitor}))

	requireLoginRedirect(t, doGet(), "/admin/users", reasonNoPermission)
}
