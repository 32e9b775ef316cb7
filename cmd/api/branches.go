package main

import (
	"errors"
	"net/http"
	"strconv"

	"elshome/internal/authz"
	"elshome/internal/domain/branches"

	"github.com/go-chi/chi/v5"
)

type createBranchPayload struct {
	Name    string   `json:"name" validate:"required,max=100"`
	Address string   `json:"address" validate:"required,max=300"`
	Tags    []string `json:"tags" validate:"omitempty,dive,max=50"`
}

type updateBranchTagsPayload struct {
	Tags []string `json:"tags" validate:"required,dive,max=50"`
}

func (app *application) listBranchesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.branches.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, list)
}

// createBranchHandler registers a branch and geocodes its address so the
// public directory can render a map pin. Admin only.
func (app *application) createBranchHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	rec := app.lookupRole(r, identity.UserID)
	if !authz.Allowed(rec, identity.UserID, 0, authz.CapAdmin) {
		app.unauthorizedErrorResponse(w, r, errors.New("insufficient permissions to create branches"))
		return
	}

	var payload createBranchPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	branch := &branches.Branch{
		Name:    payload.Name,
		Address: payload.Address,
		Tags:    payload.Tags,
	}

	// Geocoding is best effort: a branch without a pin is still listed.
	results, err := app.geocoder.Geocode(r.Context(), payload.Address)
	if err != nil {
		app.logger.Warnw("geocoding failed for new branch", "address", payload.Address, "error", err.Error())
	} else if len(results) > 0 {
		branch.Location = []float64{results[0].Longitude, results[0].Latitude}
	}

	if err := app.branches.Create(r.Context(), branch); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, branch)
}

// updateBranchTagsHandler replaces a branch's tag list, gated by the
// branch-tags role (or admin).
func (app *application) updateBranchTagsHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errNoIdentity)
		return
	}

	branchID, err := strconv.ParseInt(chi.URLParam(r, "branchID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid branch ID"))
		return
	}

	rec := app.lookupRole(r, identity.UserID)
	if !authz.Allowed(rec, identity.UserID, 0, authz.CapManageBranchTags) {
		app.unauthorizedErrorResponse(w, r, errors.New("insufficient permissions to manage branch tags"))
		return
	}

	var payload updateBranchTagsPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.branches.UpdateTags(r.Context(), branchID, payload.Tags)
	if err != nil {
		if errors.Is(err, branches.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "tags updated"})
}
