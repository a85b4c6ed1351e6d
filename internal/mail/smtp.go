package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds relay settings for the self-hosted dispatch path.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPTransport dispatches through an authenticated STARTTLS SMTP session
// instead of the provider HTTP API.
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport creates an SMTP transport for the given relay.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

// Send delivers the message over SMTP. Relays assign no retrievable message
// id, so the returned id is always empty on success.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) (string, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return "", fmt.Errorf("setting sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return "", fmt.Errorf("setting recipients: %w", err)
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return "", fmt.Errorf("setting bcc: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return "", fmt.Errorf("setting reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}

	client, err := gomail.NewClient(t.cfg.Host,
		gomail.WithPort(t.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(t.cfg.Username),
		gomail.WithPassword(t.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
		gomail.WithTimeout(t.cfg.Timeout),
	)
	if err != nil {
		return "", fmt.Errorf("configuring smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("smtp dispatch: %w", err)
	}
	return "", nil
}
