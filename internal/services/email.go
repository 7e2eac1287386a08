package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"eventapp/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendStatusChange sends the "status_change" template to one participant.
func (s *emailService) SendStatusChange(ctx context.Context, data *domain.StatusChangeEmailData) error {
	if data == nil {
		return fmt.Errorf("status change email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("status_change", data)
	if err != nil {
		return fmt.Errorf("failed to render status_change template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send status change email: %w", err)
	}
	s.logger.DebugContext(ctx, "status change email sent", "to", data.Email, "event", data.EventName)
	return nil
}

type emailSink struct {
	emails domain.EmailService
}

// NewEmailNotificationSink mails each notification to its participant. Participants without an
// email address are skipped.
func NewEmailNotificationSink(emails domain.EmailService) domain.NotificationSink {
	return &emailSink{emails: emails}
}

func (s *emailSink) Deliver(ctx context.Context, n domain.Notification) error {
	if n.Participant == nil || n.Participant.Email == nil || strings.TrimSpace(*n.Participant.Email) == "" {
		return nil
	}
	return s.emails.SendStatusChange(ctx, &domain.StatusChangeEmailData{
		Email:           *n.Participant.Email,
		ParticipantName: n.Participant.Name,
		EventName:       n.EventName,
		OldStatus:       n.OldStatus,
		NewStatus:       n.NewStatus,
		Message:         n.Message,
	})
}
