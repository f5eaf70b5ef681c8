package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/itqanlabs/itqan-backend/pkg/config"
)

// EmailSender delivers notification emails.
type EmailSender interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

// SMTPProvider sends mail over plain SMTP.
type SMTPProvider struct {
	cfg config.SMTPConfig
}

func NewSMTP(cfg config.SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to[0], subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, to, msg)
}

// NoopSender drops emails. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
