package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/sugvoyage-backend/internal/config"
)

const (
	verificationSubject = "Your SugVoyage verification code"
	dialTimeout         = 8 * time.Second
	sessionTimeout      = 15 * time.Second
)

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Welcome to SugVoyage!</h2>
  <p>Use the code below to finish creating your account:</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
  <p>The code expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>
</body>
</html>`))

// SMTPMailer отправляет письма через SMTP сервер с STARTTLS.
type SMTPMailer struct {
	cfg config.SMTPConfig
	ttl time.Duration
}

// NewSMTPMailer создаёт отправителя. ttl подставляется в текст письма.
func NewSMTPMailer(cfg config.SMTPConfig, ttl time.Duration) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, ttl: ttl}
}

// SendVerificationCode отправляет код подтверждения на адрес to.
func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	msg, err := buildVerificationMessage(m.cfg.From, m.cfg.FromName, to, code, m.ttl)
	if err != nil {
		return err
	}
	return m.send(ctx, to, msg)
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	deadline := time.Now().Add(sessionTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("mail: smtp client: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("mail: starttls: %w", err)
		}
	}
	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}

	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("mail: from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("mail: rcpt: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("mail: data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("mail: write: %w", err)
	}
	return w.Close()
}

func buildVerificationMessage(from, fromName, to, code string, ttl time.Duration) ([]byte, error) {
	var body bytes.Buffer
	if err := verificationTemplate.Execute(&body, map[string]interface{}{
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	}); err != nil {
		return nil, fmt.Errorf("mail: render template: %w", err)
	}

	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", verificationSubject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		body.String(),
	}
	return []byte(strings.Join(headers, "\r\n")), nil
}

// LogMailer пишет коды в лог вместо отправки. Для локальной разработки.
type LogMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.log.WithFields(logrus.Fields{
		"to":   to,
		"code": code,
	}).Info("mail: verification code (smtp disabled)")
	return nil
}
