package main

import (
	"net/http"

	"elshome/internal/mailer"
	"elshome/internal/store"
)

type createContactPayload struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=4000"`
}

// createContactHandler godoc
//
//	@Summary		Submit a contact-form inquiry
//	@Description	Stores the inquiry, assigns a reference code and notifies the site admin by mail.
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		createContactPayload	true	"Inquiry"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	error
//	@Router			/contacts [post]
func (app *application) createContactHandler(w http.ResponseWriter, r *http.Request) {
	var payload createContactPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	contact := &store.Contact{
		Name:    payload.Name,
		Email:   payload.Email,
		Subject: payload.Subject,
		Message: payload.Message,
	}

	if err := app.store.Contacts.Create(r.Context(), contact); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	reference, err := app.refs.Reference(contact.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	contact.Reference = reference

	if err := app.store.Contacts.SetReference(r.Context(), contact.ID, reference); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Notify the admin mailbox without holding up the response.
	go func() {
		_, err := app.mailer.Send(mailer.ContactNotifyTemplate, "admin", app.config.adminEmail, contact)
		if err != nil {
			app.logger.Errorw("failed to send contact notification", "reference", reference, "error", err.Error())
		}
	}()

	app.jsonResponse(w, http.StatusCreated, map[string]any{
		"reference": reference,
	})
}

func (app *application) adminListContactsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginate(r, 50)

	contacts, err := app.store.Contacts.List(r.Context(), limit, offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, contacts)
}
