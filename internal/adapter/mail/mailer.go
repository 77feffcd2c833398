// Package mail transmits report artifacts over SMTP. Composition of
// subject and bodies happens upstream; this package only builds the MIME
// message and sends it. Credentials are injected via config, never
// embedded here.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gomail "github.com/wneessen/go-mail"

	"github.com/couchcryptid/eonet-report-etl/internal/config"
)

// Mailer delivers a message with file attachments to a single recipient.
// It implements pipeline.Deliverer.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *slog.Logger
}

// NewMailer creates a mailer from the injected SMTP configuration.
func NewMailer(cfg *config.Config, logger *slog.Logger) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		logger:   logger,
	}
}

// Deliver sends the attachments to the destination address. Delivery
// failure is fatal to the run and propagates to the caller.
func (m *Mailer) Deliver(ctx context.Context, to string, attachments []string, subject, textBody, htmlBody string) error {
	msg, err := m.buildMessage(to, attachments, subject, textBody, htmlBody)
	if err != nil {
		return err
	}

	client, err := m.newClient()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("deliver to %s: %w", to, err)
	}

	m.logger.Info("report delivered", "to", to, "attachments", len(attachments))
	return nil
}

func (m *Mailer) newClient() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(m.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if m.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.username),
			gomail.WithPassword(m.password),
		)
	}
	return gomail.NewClient(m.host, opts...)
}

// buildMessage assembles the multipart message: plain-text body, HTML
// alternative, one attachment per file path. Attachment files must exist
// before the message is built.
func (m *Mailer) buildMessage(to string, attachments []string, subject, textBody, htmlBody string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("sender %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, textBody)
	if htmlBody != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, htmlBody)
	}

	for _, path := range attachments {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("attachment %s: %w", path, err)
		}
		msg.AttachFile(path)
	}
	return msg, nil
}
