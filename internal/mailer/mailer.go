package mailer

import "embed"

const (
	FromName               = "ELS"
	maxRetries             = 3
	ContactNotifyTemplate  = "contact_notification.tmpl"
	UserInvitationTemplate = "user_invitation.tmpl"
)

//go:embed "templates"
var FS embed.FS

// Client sends a rendered template to email; username is the recipient's
// display name on the To header.
type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
