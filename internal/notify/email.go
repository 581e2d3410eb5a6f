package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type EmailConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required"`
	Username string
	Password string
	From     string `validate:"required,email"`
	To       string `validate:"required,email"`
	UseTLS   bool
}

// EmailChannel delivers summaries as HTML email over SMTP.
type EmailChannel struct {
	cfg         EmailConfig
	dialTimeout time.Duration
}

func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg, dialTimeout: 30 * time.Second}
}

func (c *EmailChannel) Name() string {
	return "email"
}

func (c *EmailChannel) Validate() error {
	if err := validator.New().Struct(c.cfg); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

func (c *EmailChannel) Send(ctx context.Context, summary Summary) error {

	message := c.buildMessage(summary)

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Transient(errors.Wrap(err, "smtp dial"))
	}

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return Transient(errors.Wrap(err, "smtp handshake"))
	}
	defer client.Close()

	if c.cfg.UseTLS {
		if err = client.StartTLS(&tls.Config{ServerName: c.cfg.Host}); err != nil {
			return Transient(errors.Wrap(err, "smtp starttls"))
		}
	}

	if c.cfg.Username != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
		if err = client.Auth(auth); err != nil {
			return errors.Wrap(err, "smtp auth")
		}
	}

	if err = client.Mail(c.cfg.From); err != nil {
		return errors.Wrap(err, "smtp mail from")
	}
	if err = client.Rcpt(c.cfg.To); err != nil {
		return errors.Wrap(err, "smtp rcpt to")
	}

	writer, err := client.Data()
	if err != nil {
		return Transient(errors.Wrap(err, "smtp data"))
	}
	if _, err = writer.Write([]byte(message)); err != nil {
		return Transient(errors.Wrap(err, "smtp write"))
	}
	if err = writer.Close(); err != nil {
		return Transient(errors.Wrap(err, "smtp close"))
	}

	return client.Quit()
}

func (c *EmailChannel) buildMessage(summary Summary) string {

	var msg strings.Builder

	subject := fmt.Sprintf("Repository recommendations: %s (%d new)",
		summary.PreferenceName, len(summary.Repositories))

	msg.WriteString(fmt.Sprintf("From: %s\r\n", c.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", c.cfg.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("<h2>Recommendations for %q</h2>\n", summary.PreferenceName))
	for i, repo := range summary.Repositories {
		msg.WriteString(fmt.Sprintf("<div><h3>%d. <a href=%q>%s</a></h3>", i+1, repo.URL, repo.FullName))
		msg.WriteString(fmt.Sprintf("<p>%s</p>", repo.Description))
		msg.WriteString(fmt.Sprintf("<p>Stars: %d | Language: %s | Score: %.2f</p>", repo.Stars, repo.Language, repo.Score))
		if repo.Reason != "" {
			msg.WriteString(fmt.Sprintf("<p>Why: %s</p>", repo.Reason))
		}
		msg.WriteString("</div>\n")
	}

	return msg.String()
}
