package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// SMTPMailer delivers digest emails through an authenticated SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	logger   *slog.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ ports.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(host string, port int, username, password string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg domain.Email) error {
	if m.username == "" || m.password == "" {
		return domain.E(domain.KindConfig, "smtp credentials are not set")
	}
	if msg.To == "" {
		return domain.E(domain.KindConfig, "email recipient is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	contentType := "text/plain; charset=UTF-8"
	if msg.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.username)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := m.send(addr, auth, m.username, []string{msg.To}, []byte(b.String())); err != nil {
		return domain.E(domain.KindTransient, "send email via %s: %v", addr, err)
	}

	if m.logger != nil {
		m.logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
	}
	return nil
}
