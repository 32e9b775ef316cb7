package main

import (
	"errors"
	"net/http"
	"strconv"

	"elshome/internal/authz"
	"elshome/internal/store"

	"github.com/go-chi/chi/v5"
)

type createPostPayload struct {
	Title string   `json:"title" validate:"required,max=200"`
	Body  string   `json:"body" validate:"required"`
	Tags  []string `json:"tags" validate:"omitempty,dive,max=50"`
}

type updatePostPayload struct {
	Title *string  `json:"title" validate:"omitempty,max=200"`
	Body  *string  `json:"body" validate:"omitempty"`
	Tags  []string `json:"tags" validate:"omitempty,dive,max=50"`
}

// listPostsHandler godoc
//
//	@Summary	List news posts
//	@Tags		posts
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Router		/posts [get]
func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginate(r, 20)

	posts, err := app.store.Posts.List(r.Context(), limit, offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, posts)
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid post ID"))
		return
	}

	post, err := app.store.Posts.GetByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, post)
}

// createPostHandler godoc
//
//	@Summary	Create a news post
//	@Tags		posts
//	@Accept		json
//	@Produce	json
//	@Param		body	body		createPostPayload	true	"Post content"
//	@Success	201		{object}	map[string]any
//	@Failure	400		{object}	error
//	@Failure	401		{object}	error
//	@Router		/posts [post]
func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	var payload createPostPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	rec := app.lookupRole(r, identity.UserID)
	if !authz.Allowed(rec, identity.UserID, 0, authz.CapWrite) {
		app.unauthorizedErrorResponse(w, r, errors.New("insufficient permissions to create posts"))
		return
	}

	post := &store.Post{
		Title:       payload.Title,
		Body:        payload.Body,
		Tags:        payload.Tags,
		AuthorID:    identity.UserID,
		AuthorEmail: identity.Email,
	}

	if err := app.store.Posts.Create(r.Context(), post); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, post)
}

// updatePostHandler applies a partial update. Ownership is not decided
// here: the store's UPDATE carries the `author_id = caller OR admin`
// predicate, so a row the caller may not touch simply comes back as
// ErrNotFound with nothing written.
func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid post ID"))
		return
	}

	var payload updatePostPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	post, err := app.store.Posts.GetByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if payload.Title != nil {
		post.Title = *payload.Title
	}
	if payload.Body != nil {
		post.Body = *payload.Body
	}
	if payload.Tags != nil {
		post.Tags = payload.Tags
	}

	rec := app.lookupRole(r, identity.UserID)

	err = app.store.Posts.Update(r.Context(), post, identity.UserID, rec.IsAdmin())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, post)
}

// deletePostHandler deletes with the same scoped predicate as update.
// Re-deleting an already-deleted post is a clean 404, never a crash.
func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid post ID"))
		return
	}

	rec := app.lookupRole(r, identity.UserID)

	err = app.store.Posts.Delete(r.Context(), postID, identity.UserID, rec.IsAdmin())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

func paginate(r *http.Request, defaultLimit int) (int, int) {
	limit := defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
