// internal/pkg/email/smtp.go
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"sort"
	"strings"

	"github.com/your-org/saree-store/internal/config"
)

// Sender delivers a rendered email
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// SMTPSender sends mail through an SMTP relay, with implicit TLS when
// SMTPUseTLS is set
type SMTPSender struct {
	cfg config.EmailConfig
}

// NewSMTPSender creates a sender for cfg
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers email, honouring ctx for the dial
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	if s.cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host")
	}

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}

	serverAddr := net.JoinHostPort(s.cfg.SMTPHost, fmt.Sprint(s.cfg.SMTPPort))
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if s.cfg.SMTPUseTLS {
		conn = tls.Client(conn, &tls.Config{ServerName: s.cfg.SMTPHost})
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !s.cfg.SMTPUseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.SMTPHost}); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, addr := range email.To {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send DATA command: %w", err)
	}
	if _, err := writer.Write(buildMessage(s.cfg, email)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write email content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish email content: %w", err)
	}

	return client.Quit()
}

// buildMessage renders headers and body with CRLF line endings
func buildMessage(cfg config.EmailConfig, email *Email) []byte {
	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", cfg.FromName), cfg.FromEmail)
	}

	headers := map[string]string{
		"From":         from,
		"To":           strings.Join(email.To, ", "),
		"Subject":      mime.QEncoding.Encode("utf-8", email.Subject),
		"MIME-Version": "1.0",
		"Content-Type": `text/html; charset="utf-8"`,
	}
	if cfg.ReplyTo != "" {
		headers["Reply-To"] = cfg.ReplyTo
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msg bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&msg, "%s: %s\r\n", k, headers[k])
	}
	msg.WriteString("\r\n")
	msg.WriteString(email.HTMLContent)
	return msg.Bytes()
}
