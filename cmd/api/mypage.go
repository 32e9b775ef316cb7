package main

import (
	"errors"
	"net/http"

	"elshome/internal/store"
)

// mypageHandler backs the employee mypage. The route guard has already
// required an identity for this path; the handler still refuses to run
// without one rather than trusting the edge alone.
func (app *application) mypageHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	posts, err := app.store.Posts.ListByAuthor(r.Context(), identity.UserID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	rec := app.lookupRole(r, identity.UserID)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"user":  user,
		"role":  rec,
		"posts": posts,
	})
}
