package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/binghan60/EKERA-LunchBOT/config"
	"github.com/binghan60/EKERA-LunchBOT/pkg/logger"
)

// Mailer delivers operator alert mail. Everything here is best-effort: a
// failed alert is logged and swallowed, it never fails the operation that
// triggered it.
type Mailer interface {
	NotifyOperators(subject, details string)
}

type smtpMailer struct {
	cfg config.MailConfig
}

// New builds an SMTP-backed mailer. When no alert address is configured the
// returned mailer only logs.
func New(cfg config.MailConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) NotifyOperators(subject, details string) {
	if m.cfg.AlertEmail == "" || m.cfg.Username == "" {
		logger.Warn("Operator alert mail not configured, logging only", map[string]interface{}{
			"subject": subject,
		})
		return
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		from, m.cfg.AlertEmail, subject, details,
	)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, from, []string{m.cfg.AlertEmail}, []byte(msg)); err != nil {
		logger.Error("Failed to send operator alert mail", err, map[string]interface{}{
			"subject": subject,
		})
		return
	}

	logger.Info("Operator alert mail sent", map[string]interface{}{
		"subject": subject,
	})
}

// Noop returns a mailer that does nothing. Used in tests.
func Noop() Mailer {
	return noopMailer{}
}

type noopMailer struct{}

func (noopMailer) NotifyOperators(string, string) {}
