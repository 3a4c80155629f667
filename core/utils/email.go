package utils

import (
	"fmt"
	"net/smtp"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type EmailMessage struct {
	To      []string
	Subject string
	Body    string
}

// SendEmail delivers a plain-text message over SMTP with STARTTLS when the
// server offers it.
func SendEmail(cfg EmailConfig, msg EmailMessage) error {
	if cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return smtp.SendMail(addr, auth, cfg.From, msg.To, BuildMessage(cfg.From, msg))
}

func BuildMessage(from string, msg EmailMessage) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// Mailer sends one message.
type Mailer interface {
	Send(msg EmailMessage) error
}

type SMTPMailer struct {
	Config EmailConfig
}

func (m SMTPMailer) Send(msg EmailMessage) error {
	return SendEmail(m.Config, msg)
}
