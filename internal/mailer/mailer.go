package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"postboard/config"
)

// Message is an outbound HTML mail.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a message and reports which recipient addresses the
// transport accepted. Callers must not treat delivery as done unless
// the target address appears in the accepted set.
type Mailer interface {
	Send(ctx context.Context, msg Message) (accepted []string, err error)
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
}

func NewSMTP(cfg config.MailConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
	}
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) ([]string, error) {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		msg.From, msg.To, msg.Subject, msg.HTML,
	)

	if err := smtp.SendMail(m.addr, m.auth, msg.From, []string{msg.To}, []byte(body)); err != nil {
		return nil, err
	}
	// smtp.SendMail fails the whole transaction if any RCPT is
	// rejected, so success means the single recipient was accepted.
	return []string{msg.To}, nil
}

// LogMailer accepts everything and only logs. Used in development so
// auth flows work without a relay.
type LogMailer struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) ([]string, error) {
	m.logger.Info("Mail (dev transport)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("html", msg.HTML),
	)
	return []string{msg.To}, nil
}
