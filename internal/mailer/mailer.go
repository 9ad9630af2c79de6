package mailer

import "embed"

const (
	FROM_NAME             = "OpenConf"
	MAX_RETRY             = 3
	CONFIRMATION_TEMPLATE = "registration_confirmation.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, toUsername, toEmail string, data any) (int, error)
}

// ConfirmationData is injected into the confirmation mail template.
type ConfirmationData struct {
	FullName      string
	ReferenceCode string
}
