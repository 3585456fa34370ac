package smtp

import (
	"log/slog"

	"github.com/event-registration-api/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends HTML emails.
type Mailer interface {
	SendEmail(to, subject, html string) error
}

type mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *mailer) SendEmail(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return m.dialer.DialAndSend(msg)
}

// NoopMailer logs instead of sending. Used when SMTP is unconfigured in
// development so flows remain exercisable without a mail server.
type NoopMailer struct{}

func (NoopMailer) SendEmail(to, subject, _ string) error {
	slog.Warn("mailer not configured, dropping email", "to", to, "subject", subject)
	return nil
}
