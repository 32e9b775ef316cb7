package main

import (
	"errors"
	"net/http"

	"elshome/internal/store"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// loginHandler godoc
//
//	@Summary		Sign in with email and password
//	@Description	Verifies credentials, sets HttpOnly access/refresh cookies and returns the session summary.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginPayload	true	"Credentials"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Router			/authentication/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.unauthorizedErrorResponse(w, r, errors.New("invalid credentials"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid credentials"))
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID, user.Email)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Save refresh token for rotation/revocation
	if err := app.store.Users.SaveRefreshToken(r.Context(), user.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// A fresh sign-in invalidates whatever this user had cached.
	app.sessions.PurgeUser(user.ID)

	app.setAuthCookies(w, accessToken, refreshToken)

	rec := app.lookupRole(r, user.ID)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    rec.Role,
	})
}

// refreshTokenHandler rotates the token pair explicitly. The session
// resolver already refreshes silently; this endpoint exists for clients
// that want to refresh ahead of expiry.
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.refreshSession(w, r); !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("invalid refresh token"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	if err := app.store.Users.DeleteRefreshToken(r.Context(), identity.UserID); err != nil {
		app.logger.Warnw("failed to delete refresh token on logout", "user_id", identity.UserID, "error", err.Error())
	}

	app.sessions.PurgeUser(identity.UserID)

	// Always clear cookies
	app.clearAuthCookies(w)

	w.WriteHeader(http.StatusNoContent)
}

// sessionHandler godoc
//
//	@Summary		Get current session
//	@Description	Reads the access_token cookie, validates it and returns the identity plus its current role.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		401	{object}	error
//	@Router			/authentication/session [get]
func (app *application) sessionHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	rec := app.lookupRole(r, identity.UserID)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"user_id":   identity.UserID,
		"email":     identity.Email,
		"role":      rec.Role,
		"can_write": rec.CanWrite,
	})
}
