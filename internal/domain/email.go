package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// StatusChangeEmailData holds data for the status change email.
type StatusChangeEmailData struct {
	Email           string
	ParticipantName string
	EventName       string
	OldStatus       EventStatus
	NewStatus       EventStatus
	Message         string
}

// EmailService sends domain-level emails.
type EmailService interface {
	SendStatusChange(ctx context.Context, data *StatusChangeEmailData) error
}
