package main

import (
	"errors"
	"net/http"
	"strconv"

	"elshome/internal/domain/roles"
	"elshome/internal/mailer"
	"elshome/internal/store"

	"github.com/go-chi/chi/v5"
)

type setRolePayload struct {
	Role            string `json:"role" validate:"required,oneof=admin branch-tags visitor"`
	CanWrite        bool   `json:"can_write"`
	CanReadSecurity bool   `json:"can_read_security"`
}

type createUserPayload struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// adminCreateUserHandler provisions an employee account and mails the new
// hire an invitation. Accounts only come into being through this surface;
// there is no self-registration.
func (app *application) adminCreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload createUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &store.User{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		IsActive:  true,
	}
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	go func() {
		data := map[string]string{
			"Username": user.FirstName,
			"LoginURL": app.config.frontendURL + "/login",
		}
		_, err := app.mailer.Send(mailer.UserInvitationTemplate, user.FirstName, user.Email, data)
		if err != nil {
			app.logger.Errorw("failed to send invitation", "user_id", user.ID, "error", err.Error())
		}
	}()

	app.jsonResponse(w, http.StatusCreated, user)
}

// adminListUsersHandler backs the admin user list. The route guard has
// already required the admin role for everything under /admin.
func (app *application) adminListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.roles.ListUsersWithRoles(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, users)
}

// adminSetUserRoleHandler is the administrative surface that writes role
// records. Roles take effect on the target's next request because nothing
// about authorization is cached.
func (app *application) adminSetUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	var payload setRolePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	rec := roles.Record{
		UserID:          userID,
		Role:            roles.RoleName(payload.Role),
		CanWrite:        payload.CanWrite,
		CanReadSecurity: payload.CanReadSecurity,
	}

	if err := app.roles.Set(r.Context(), rec); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "role updated"})
}
