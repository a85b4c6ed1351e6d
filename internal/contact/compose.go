package contact

import (
	"fmt"
	"html"
	"strings"

	"github.com/auraadriatica/backend/internal/mail"
)

// compose turns a validated submission into the outbound inquiry email.
// Every submitter-supplied value lands in the HTML body escaped, so pasted
// markup cannot inject into the operator's mail client.
func compose(sub Submission, remoteIP, sender string, to, bcc []string) mail.Message {
	label := sub.Apartment
	if label == "" {
		label = "Apartment"
	}

	subject := sub.Subject
	if subject == "" {
		subject = fmt.Sprintf("[%s] Inquiry from %s", label, sub.Name)
	}
	if sub.Dates != "" {
		subject += " — " + sub.Dates
	}

	var b strings.Builder
	b.WriteString("New inquiry from the Aura Adriatica website\n\n")
	fmt.Fprintf(&b, "Name: %s\n", sub.Name)
	fmt.Fprintf(&b, "Email: %s\n", sub.Email)
	if sub.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", sub.Phone)
	}
	if sub.Apartment != "" {
		fmt.Fprintf(&b, "Apartment: %s\n", sub.Apartment)
	}
	if sub.Dates != "" {
		fmt.Fprintf(&b, "Dates: %s\n", sub.Dates)
	}
	if remoteIP != "" {
		fmt.Fprintf(&b, "IP: %s\n", remoteIP)
	}
	b.WriteString("----------------------------------------\n\n")
	b.WriteString(sub.Message)
	b.WriteString("\n")
	text := b.String()

	return mail.Message{
		From:    sender,
		To:      to,
		Bcc:     bcc,
		ReplyTo: sub.Email,
		Subject: subject,
		Text:    text,
		HTML:    htmlBody(text),
	}
}

// htmlBody escapes the plain-text body and converts newlines to <br>.
func htmlBody(text string) string {
	escaped := html.EscapeString(text)
	return strings.ReplaceAll(escaped, "\n", "<br>\n")
}
