package main

import (
	"context"
	"errors"
	"net/http"

	"elshome/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// setAuthCookies sets access + refresh tokens as HttpOnly cookies. Both live
// on "/" because the resolver needs the refresh token on any path to do a
// silent refresh.
func (app *application) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   app.config.env == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.config.auth.token.accessTokenExp.Seconds()),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   app.config.env == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.config.auth.token.refreshTokenExp.Seconds()),
	})
}

func (app *application) clearAuthCookies(w http.ResponseWriter) {
	expire := func(name string) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   app.config.env == "production",
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}

	expire(accessTokenCookie)
	expire(refreshTokenCookie)
}

// resolveSession produces the current identity from the request cookies, or
// reports that there is none. It runs once per request, before anything
// else looks at the identity.
//
// Every failure on this path resolves to "no identity" rather than an
// error: an expired or garbled token is the normal unauthenticated case,
// and an unreachable store fails closed the same way.
func (app *application) resolveSession(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		// Best-effort cache of recent resolutions. A hit only skips the
		// token parse; role checks still happen downstream per request.
		if identity, ok := app.sessions.Get(c.Value); ok {
			return identity, true
		}

		token, err := app.authenticator.ValidateAccessToken(c.Value)
		if err == nil && token.Valid {
			identity, err := auth.IdentityFromToken(token)
			if err == nil {
				app.sessions.Put(c.Value, identity)
				return identity, true
			}
		}
	}

	// Access token missing or past expiry: attempt a silent refresh so the
	// client stays signed in without noticing.
	return app.refreshSession(w, r)
}

// refreshSession rotates the token pair off a valid refresh cookie. The
// refreshed cookies are written onto the outgoing response; dropping them
// would make the client appear logged out on its next request even though
// this one succeeded.
func (app *application) refreshSession(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	c, err := r.Cookie(refreshTokenCookie)
	if err != nil || c.Value == "" {
		return auth.Identity{}, false
	}

	token, err := app.authenticator.ValidateRefreshToken(c.Value)
	if err != nil || !token.Valid {
		return auth.Identity{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Identity{}, false
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return auth.Identity{}, false
	}
	userID := int64(sub)

	ctx := r.Context()

	// Rotation safety: the presented token must be the one we stored last.
	saved, err := app.store.Users.GetRefreshToken(ctx, userID)
	if err != nil || saved != c.Value {
		return auth.Identity{}, false
	}

	user, err := app.store.Users.GetByID(ctx, userID)
	if err != nil {
		return auth.Identity{}, false
	}

	accessToken, newRefresh, err := app.authenticator.GenerateTokens(user.ID, user.Email)
	if err != nil {
		return auth.Identity{}, false
	}

	if err := app.store.Users.SaveRefreshToken(ctx, user.ID, newRefresh); err != nil {
		return auth.Identity{}, false
	}

	// The access token that just failed validation may still be cached;
	// drop it now that it has been rotated out.
	if old, err := r.Cookie(accessTokenCookie); err == nil && old.Value != "" {
		app.sessions.Invalidate(old.Value)
	}

	app.setAuthCookies(w, accessToken, newRefresh)

	identity := auth.Identity{UserID: user.ID, Email: user.Email}
	app.sessions.Put(accessToken, identity)

	return identity, true
}

type identityKey string

const identityCtx identityKey = "identity"

func withIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityCtx, identity)
}

func getIdentityFromContext(r *http.Request) (auth.Identity, bool) {
	identity, ok := r.Context().Value(identityCtx).(auth.Identity)
	return identity, ok
}

var errNoIdentity = errors.New("no authenticated identity")
