package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"elshome/internal/authz"
	"elshome/internal/store"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// listDocumentsHandler returns document metadata. Security-category rows
// are scoped away inside the query for callers without can_read_security,
// so the response is simply shorter rather than an error.
func (app *application) listDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	rec := app.lookupRole(r, identity.UserID)
	includeSecurity := authz.Allowed(rec, identity.UserID, 0, authz.CapReadSecurity)

	docs, err := app.store.Documents.List(r.Context(), includeSecurity)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, docs)
}

// getDocumentHandler returns one document's metadata. Security-category rows
// behave like missing rows for callers without can_read_security, matching
// the listing.
func (app *application) getDocumentHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	documentID, err := strconv.ParseInt(chi.URLParam(r, "documentID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid document ID"))
		return
	}

	doc, err := app.store.Documents.GetByID(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if doc.Category == store.CategorySecurity {
		rec := app.lookupRole(r, identity.UserID)
		if !authz.Allowed(rec, identity.UserID, 0, authz.CapReadSecurity) {
			app.notFoundResponse(w, r, store.ErrNotFound)
			return
		}
	}

	app.jsonResponse(w, http.StatusOK, doc)
}

// uploadDocumentHandler godoc
//
//	@Summary	Upload a document
//	@Tags		documents
//	@Accept		mpfd
//	@Produce	json
//	@Param		title		formData	string	true	"Document title"
//	@Param		category	formData	string	true	"Document category"
//	@Param		file		formData	file	true	"File, 10MB limit"
//	@Success	201			{object}	map[string]any
//	@Failure	400			{object}	error
//	@Failure	401			{object}	error
//	@Security	ApiKeyAuth
//	@Router		/documents [post]
func (app *application) uploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	rec := app.lookupRole(r, identity.UserID)
	if !authz.Allowed(rec, identity.UserID, 0, authz.CapWrite) {
		app.unauthorizedErrorResponse(w, r, errors.New("insufficient permissions to upload documents"))
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10 MB
		app.badRequestResponse(w, r, errors.New("unable to parse form, file size limit is 10MB"))
		return
	}

	title := r.FormValue("title")
	category := r.FormValue("category")
	if title == "" || category == "" {
		app.badRequestResponse(w, r, errors.New("title and category are required"))
		return
	}

	// Writing into the security category needs the read flag too.
	if category == store.CategorySecurity && !authz.Allowed(rec, identity.UserID, 0, authz.CapReadSecurity) {
		app.unauthorizedErrorResponse(w, r, errors.New("insufficient permissions for the security category"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("unable to retrieve file"))
		return
	}
	defer file.Close()

	fileURL, err := app.uploadToStorage(file, fmt.Sprintf("doc_%s", uuid.NewString()))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	doc := &store.Document{
		Title:       title,
		Category:    category,
		FileURL:     fileURL,
		AuthorID:    identity.UserID,
		AuthorEmail: identity.Email,
	}

	if err := app.store.Documents.Create(r.Context(), doc); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, doc)
}

// deleteDocumentHandler removes the metadata row (ownership-scoped in the
// store) and then cleans the stored file up in the background.
func (app *application) deleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	documentID, err := strconv.ParseInt(chi.URLParam(r, "documentID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid document ID"))
		return
	}

	rec := app.lookupRole(r, identity.UserID)

	fileURL, err := app.store.Documents.Delete(r.Context(), documentID, identity.UserID, rec.IsAdmin())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	go func() {
		if err := app.deleteFromStorage(fileURL); err != nil {
			app.logger.Warnw("failed to delete stored file", "file_url", fileURL, "error", err.Error())
		}
	}()

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

// uploadToStorage pushes a file to cloudinary under a controlled public ID.
func (app *application) uploadToStorage(file io.Reader, publicID string) (string, error) {
	resp, err := app.cld.Upload.Upload(
		context.Background(),
		file,
		uploader.UploadParams{
			Folder:    "documents",
			PublicID:  publicID,
			Overwrite: api.Bool(false),
		},
	)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

func (app *application) deleteFromStorage(fileURL string) error {
	publicID, err := extractPublicIDFromURL(fileURL)
	if err != nil {
		return fmt.Errorf("failed to extract public ID: %w", err)
	}

	_, err = app.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	return nil
}
