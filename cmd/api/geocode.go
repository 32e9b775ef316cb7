package main

import (
	"errors"
	"net/http"
)

// geocodeHandler is a thin passthrough to the upstream geocoder; it exists
// so the API key stays server-side.
func (app *application) geocodeHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		app.badRequestResponse(w, r, errors.New("query parameter q is required"))
		return
	}

	results, err := app.geocoder.Geocode(r.Context(), query)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, results)
}
