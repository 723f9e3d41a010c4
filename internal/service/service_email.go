package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/adapter"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const defaultRecipientName = "there"

type emailButton struct {
	URL   string
	Label string
}

type emailData struct {
	Subject string
	Name    string
	Button  emailButton
	Year    int
}

type emailService struct {
	sender  adapter.EmailSender
	baseURL string
	now     func() time.Time
}

// NewEmailService returns an [EmailService] that builds links under baseURL
// and hands rendered messages to sender.
func NewEmailService(sender adapter.EmailSender, baseURL string) EmailService {
	return &emailService{
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *emailService) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := s.baseURL + "/api/auth/verify?token=" + url.QueryEscape(token)
	return s.send(ctx, "verification", to, "Verify your email address", name, emailButton{URL: link, Label: "Verify Email Address"})
}

func (s *emailService) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	link := s.baseURL + "/reset-password/" + url.PathEscape(token)
	return s.send(ctx, "reset_password", to, "Reset your password", name, emailButton{URL: link, Label: "Reset Password"})
}

func (s *emailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	return s.send(ctx, "welcome", to, "Welcome to Agentity!", name, emailButton{URL: s.baseURL + "/dashboard", Label: "Go to Dashboard"})
}

func (s *emailService) send(ctx context.Context, tmpl, to, subject, name string, button emailButton) error {
	if name == "" {
		name = defaultRecipientName
	}

	var body bytes.Buffer
	err := emailTemplates.ExecuteTemplate(&body, tmpl, emailData{
		Subject: subject,
		Name:    name,
		Button:  button,
		Year:    s.now().Year(),
	})
	if err != nil {
		return fmt.Errorf("render %s email: %w", tmpl, err)
	}

	if err = s.sender.Send(ctx, models.Email{To: to, Subject: subject, HTML: body.String()}); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*emailService.send").Str("template", tmpl).Msg("failed to send email")
		return fmt.Errorf("send %s email: %w", tmpl, err)
	}
	return nil
}
