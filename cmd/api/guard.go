package main

import (
	"net/http"
	"net/url"
	"regexp"

	"elshome/internal/authz"
)

// Guarded path patterns. /admin requires the admin role, /employees/mypage
// requires any authenticated identity. Everything else is unguarded.
var (
	adminPathPattern   = regexp.MustCompile(`^/admin(/.*)?$`)
	membersPathPattern = regexp.MustCompile(`^/employees/mypage(/.*)?$`)
)

const (
	reasonLoginRequired = "login_required"
	reasonNoPermission  = "no_permission"
)

// RouteGuard is the edge gate in front of every route. It is evaluated
// fresh on each request — a role revoked between two requests takes effect
// on the second one — and it shares its decision logic with the mutating
// handlers through authz.Allowed.
func (app *application) RouteGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case adminPathPattern.MatchString(path):
			identity, ok := getIdentityFromContext(r)
			if !ok {
				app.redirectToLogin(w, r, path, reasonLoginRequired)
				return
			}

			rec := app.lookupRole(r, identity.UserID)
			if !authz.Allowed(rec, identity.UserID, 0, authz.CapAdmin) {
				app.redirectToLogin(w, r, path, reasonNoPermission)
				return
			}

		case membersPathPattern.MatchString(path):
			if _, ok := getIdentityFromContext(r); !ok {
				app.redirectToLogin(w, r, path, reasonLoginRequired)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (app *application) redirectToLogin(w http.ResponseWriter, r *http.Request, next, reason string) {
	app.logger.Infow("guarded path denied", "path", next, "reason", reason)

	q := url.Values{}
	q.Set("next", next)
	q.Set("error", reason)

	http.Redirect(w, r, "/login?"+q.Encode(), http.StatusFound)
}

// loginPageHandler is the login entry point the guard redirects to. Page
// rendering lives in the frontend; this endpoint just echoes the redirect
// context so the client can show the right message and return target.
func (app *application) loginPageHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, map[string]string{
		"next":  r.URL.Query().Get("next"),
		"error": r.URL.Query().Get("error"),
	})
}
