// internal/mailer/mailer.go
package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/alexpetro/campaign-notifier/internal/config"
	"github.com/alexpetro/campaign-notifier/internal/queue"
)

// Client sends campaign emails over SMTP with implicit TLS (port 465 style).
// A connection is opened per send; delivery volume is bounded by the queue
// consumer's prefetch, not by this client.
type Client struct {
	host string
	port int
	name string
	pass string
}

func New(cfg *config.Config) *Client {
	return &Client{
		host: cfg.EmailHost,
		port: cfg.EmailPort,
		name: cfg.EmailName,
		pass: cfg.EmailPass,
	}
}

// Send renders and delivers one notification email. Any SMTP failure is
// returned to the caller, which records the undelivered outcome.
func (c *Client) Send(msg queue.NotificationMessage) error {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: c.host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, c.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", c.name, c.pass, c.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(c.name); err != nil {
		return err
	}
	if err := client.Rcpt(msg.Email); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(c.render(msg))); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (c *Client) render(msg queue.NotificationMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", c.name)
	fmt.Fprintf(&b, "To: %s\r\n", msg.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.CampaignTitle)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Dear %s %s,\r\n\r\n", msg.FirstName, msg.LastName)
	b.WriteString(msg.Content)
	b.WriteString("\r\n")
	return b.String()
}
