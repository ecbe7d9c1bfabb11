// Package mailer delivers transactional email. With SMTP configured it sends
// for real; without it, messages are logged so local development never needs
// a mail server.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is a fully built message ready for delivery.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP settings. An empty Host disables real delivery.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends email via SMTP or, unconfigured, logs it.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Send delivers the message. Failures are logged, not returned: email is
// best-effort and request handlers must not fail on delivery problems.
func (m *Mailer) Send(ctx context.Context, e Email) {
	if m == nil || m.cfg.Host == "" {
		if m != nil && m.log != nil {
			m.log.Info("email suppressed (no SMTP configured)",
				zap.String("to", e.To),
				zap.String("subject", e.Subject))
		}
		return
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := buildMIME(m.cfg.From, e)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{e.To}, msg); err != nil {
		m.log.Error("email delivery failed",
			zap.String("to", e.To),
			zap.String("subject", e.Subject),
			zap.Error(err))
		return
	}
	m.log.Info("email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
}

func buildMIME(from string, e Email) []byte {
	var b strings.Builder
	boundary := "exodologio-mime-boundary"

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, e.TextBody)
	if e.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, e.HTMLBody)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
