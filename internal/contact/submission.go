// Package contact runs guest inquiries through validation, bot-challenge
// verification and transactional email dispatch.
package contact

import (
	"errors"
	"fmt"
	"strings"
)

// Submission is an untrusted contact form body as received from the client.
type Submission struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email_tld"`
	Message   string `json:"message" validate:"required"`
	Phone     string `json:"phone"`
	Apartment string `json:"apt"`
	Dates     string `json:"dates"`
	Subject   string `json:"subject"`
	Token     string `json:"token"`

	// Website is the honeypot field. It exists in the form markup but is
	// invisible to humans; any value means an automated submission.
	Website string `json:"website"`
}

// Outcome describes how a submission was concluded.
type Outcome int

const (
	// OutcomeSent means the inquiry email was dispatched.
	OutcomeSent Outcome = iota + 1

	// OutcomeAcceptedSilently means the honeypot tripped: the caller is
	// told the submission succeeded, but no mail is sent. Keeping the
	// response indistinguishable from success hides the mechanism from
	// bot authors.
	OutcomeAcceptedSilently
)

// Result is a successful pipeline conclusion.
type Result struct {
	Outcome   Outcome
	MessageID string
}

var (
	// ErrMissingToken means the client supplied no challenge token.
	ErrMissingToken = errors.New("missing challenge token")

	// ErrServerMisconfigured means a required secret or credential is
	// absent from server configuration. Operator error, not client error.
	ErrServerMisconfigured = errors.New("server misconfigured")

	// ErrRateLimited means the source address exceeded the submission ceiling.
	ErrRateLimited = errors.New("too many attempts")
)

// FieldError is a single human-readable validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field validation failures. The messages
// are safe to show to the submitter.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, " ")
}

// ChallengeRejectedError means the verification service answered but judged
// the token invalid. Codes carry the service's diagnostic error codes.
type ChallengeRejectedError struct {
	Codes []string
}

func (e *ChallengeRejectedError) Error() string {
	if len(e.Codes) == 0 {
		return "challenge verification failed"
	}
	return fmt.Sprintf("challenge verification failed: %s", strings.Join(e.Codes, ", "))
}

// DependencyError means an upstream dependency (challenge service or mail
// provider) could not complete the call. Distinct from client errors so the
// browser can offer a retry.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
