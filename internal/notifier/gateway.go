package notifier

import (
	"context"

	"productwatch/internal/config"
	"productwatch/internal/errorwrapper"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"
)

// EmailGateway delivers a formatted message to one recipient.
type EmailGateway interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPGateway is the EmailGateway implementation on top of an SMTP relay.
type SMTPGateway struct {
	cfg    config.NotificationConfig
	dialer *gomail.Dialer
	logger zerolog.Logger
}

// NewSMTPGateway creates an SMTP-backed gateway. Sends fail with a
// CollaboratorError when credentials are missing.
func NewSMTPGateway(cfg config.NotificationConfig, logger zerolog.Logger) *SMTPGateway {
	return &SMTPGateway{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword),
		logger: logger.With().Str("component", "SMTPGateway").Logger(),
	}
}

// Send delivers one email. The plain-text body is attached as the alternative
// part for clients that reject HTML.
func (g *SMTPGateway) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if !g.cfg.IsConfigured() {
		return errorwrapper.NewCollaboratorError("email", errorwrapper.NewError("smtp credentials are not configured"))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetAddressHeader("From", g.cfg.EmailUser, g.cfg.FromName)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", textBody)
	message.AddAlternative("text/html", htmlBody)

	if err := g.dialer.DialAndSend(message); err != nil {
		g.logger.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Failed to send email")
		return errorwrapper.NewCollaboratorError("email", err)
	}
	g.logger.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}
