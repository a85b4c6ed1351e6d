// Package mail dispatches transactional inquiry email through a pluggable
// transport: the Resend HTTP API in production, or an authenticated SMTP
// relay on self-hosted deployments.
package mail

import (
	"context"
	"fmt"
	netmail "net/mail"
)

// DefaultSender is the known-good verified sender used when configuration
// supplies no sender or one with an invalid shape. Dispatching from an
// unverified or malformed address is a guaranteed provider rejection.
const DefaultSender = "Aura Adriatica <info@auraadriatica.com>"

// Message is one outbound transactional email.
type Message struct {
	From    string
	To      []string
	Bcc     []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Transport submits a composed message and returns the provider-assigned
// message id, when the provider issues one.
type Transport interface {
	Send(ctx context.Context, msg Message) (id string, err error)
}

// ProviderError reports a non-success response from the mail provider,
// with enough of the body kept to diagnose misconfiguration (such as an
// unverified sender domain) without dumping the full payload into logs.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mail provider returned status %d: %s", e.StatusCode, e.Body)
}

// Sender validates the configured sender shape and falls back to
// DefaultSender when it cannot be parsed as an address.
func Sender(configured string) string {
	if configured == "" {
		return DefaultSender
	}
	if _, err := netmail.ParseAddress(configured); err != nil {
		return DefaultSender
	}
	return configured
}
