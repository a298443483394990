package notify

import (
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"doctor-appointment-server/internal/config"
)

// Mailer delivers a single HTML email. Delivery is best-effort
// throughout the application; callers never see a Mailer error.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg     config.MailerConfig
	appName string
}

// NewSMTPMailer creates a mailer from the application's SMTP settings.
func NewSMTPMailer(cfg config.MailerConfig, appName string) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, appName: appName}
}

// Send delivers one message. Returns an error when no SMTP host is
// configured so the notifier can log the skipped delivery.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %q <%s>\r\n", m.appName, m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String()))
}
