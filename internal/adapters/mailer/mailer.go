// Package mailer sends quote notification emails to the back office.
package mailer

import (
	"fmt"
	"net/smtp"

	zlog "github.com/rs/zerolog/log"

	"github.com/atlasbuild/buildsite/internal/config"
	"github.com/atlasbuild/buildsite/internal/domain"
)

type Mailer struct {
	cfg *config.EmailConfig
}

func New(cfg *config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Enabled && m.cfg.NotifyEmail != ""
}

// NotifyQuote emails the configured inbox about a new quote request.
// When email is disabled the notification is only logged, so a missing
// SMTP setup never blocks quote intake.
func (m *Mailer) NotifyQuote(q domain.Quote) error {
	if !m.Enabled() {
		zlog.Info().
			Str("name", q.Name).
			Str("email", q.Email).
			Msg("quote notification (email disabled)")
		return nil
	}
	if m.cfg.SMTPHost == "" || m.cfg.Username == "" || m.cfg.Password == "" {
		return fmt.Errorf("mailer not properly configured")
	}

	subject := fmt.Sprintf("New quote request from %s", q.Name)
	body := fmt.Sprintf(
		"A new quote request was submitted.\r\n\r\n"+
			"Name: %s\r\nEmail: %s\r\nPhone: %s\r\n\r\nMessage:\r\n%s\r\n",
		q.Name, q.Email, q.Phone, q.Message,
	)

	msg := fmt.Sprintf("From: %s\r\n", m.cfg.FromEmail) +
		fmt.Sprintf("To: %s\r\n", m.cfg.NotifyEmail) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{m.cfg.NotifyEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("send quote notification: %w", err)
	}
	return nil
}
