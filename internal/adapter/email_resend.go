package adapter

import (
	"context"
	"fmt"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/models"
)

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

type resendSender struct {
	client *utils.HTTPClient
	from   string
}

// NewResendSender returns an [EmailSender] posting to the Resend API.
// Messages without a sender use cfg.From.
func NewResendSender(cfg config.Email) EmailSender {
	return &resendSender{
		client: utils.NewHTTPClient(
			utils.WithBaseURL(cfg.ResendURL),
			utils.WithTimeout(cfg.Timeout),
			utils.WithAuthToken(cfg.ResendAPIKey),
		),
		from: cfg.From,
	}
}

func (s *resendSender) Send(ctx context.Context, email models.Email) error {
	if email.From == "" {
		email.From = s.from
	}

	var result resendEmailResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(resendEmailRequest{
			From:    email.From,
			To:      []string{email.To},
			Subject: email.Subject,
			HTML:    email.HTML,
		}).
		SetResult(&result).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("send email request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	logger.FromContext(ctx).Debug().
		Str("func", "*resendSender.Send").
		Str("email_id", result.ID).
		Str("subject", email.Subject).
		Msg("email accepted by provider")
	return nil
}

type logSender struct {
	logger *logger.Logger
	from   string
}

// NewLogSender returns an [EmailSender] that writes messages to the log. It
// is used when no e-mail provider is configured.
func NewLogSender(cfg config.Email, log *logger.Logger) EmailSender {
	return &logSender{logger: log, from: cfg.From}
}

func (s *logSender) Send(_ context.Context, email models.Email) error {
	if email.From == "" {
		email.From = s.from
	}
	s.logger.Info().
		Str("from", email.From).
		Str("to", email.To).
		Str("subject", email.Subject).
		Str("html", email.HTML).
		Msg("email provider not configured, message logged")
	return nil
}
