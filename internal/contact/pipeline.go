package contact

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/auraadriatica/backend/internal/mail"
)

// Limiter admits or rejects a submission attempt from a source address,
// recording the attempt as a side effect. Best effort only.
type Limiter interface {
	Allow(ctx context.Context, source string, now time.Time) (bool, error)
}

// Pipeline orchestrates a contact submission end to end:
// honeypot → validation → challenge verification → (rate limit) → dispatch.
// The outbound calls run sequentially; mail must never be dispatched for an
// unverified challenge.
type Pipeline struct {
	validator  *Validator
	verifier   ChallengeVerifier
	limiter    Limiter
	transport  mail.Transport
	sender     string
	recipients []string
	bcc        []string
	log        *slog.Logger
	now        func() time.Time
}

// NewPipeline wires the submission pipeline. limiter may be nil; it is only
// used on the SMTP relay path, where no provider-side abuse controls exist.
func NewPipeline(
	validator *Validator,
	verifier ChallengeVerifier,
	limiter Limiter,
	transport mail.Transport,
	sender string,
	recipients, bcc []string,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		validator:  validator,
		verifier:   verifier,
		limiter:    limiter,
		transport:  transport,
		sender:     mail.Sender(sender),
		recipients: recipients,
		bcc:        bcc,
		log:        log,
		now:        time.Now,
	}
}

// Submit runs one submission through the pipeline. Failures come back as
// the typed errors in this package so the handler can map them to statuses.
func (p *Pipeline) Submit(ctx context.Context, sub Submission, remoteIP string) (Result, error) {
	if p.verifier == nil || p.transport == nil || len(p.recipients) == 0 {
		return Result{}, ErrServerMisconfigured
	}

	// Honeypot first: bots that fill the hidden field get a success
	// response and nothing else, so the mechanism stays invisible.
	if sub.Website != "" {
		p.log.Info("submission accepted silently", "reason", "honeypot")
		return Result{Outcome: OutcomeAcceptedSilently}, nil
	}

	if err := p.validator.Validate(&sub); err != nil {
		return Result{}, err
	}

	if sub.Token == "" {
		return Result{}, ErrMissingToken
	}

	verdict, err := p.verifier.Verify(ctx, sub.Token, remoteIP)
	if err != nil {
		if errors.Is(err, ErrServerMisconfigured) {
			return Result{}, err
		}
		return Result{}, &DependencyError{Op: "challenge verification", Err: err}
	}
	if !verdict.Success {
		return Result{}, &ChallengeRejectedError{Codes: verdict.ErrorCodes}
	}

	if p.limiter != nil {
		ok, err := p.limiter.Allow(ctx, remoteIP, p.now())
		if err != nil {
			// The throttle is best effort; a broken counter must not
			// block real guests.
			p.log.Warn("rate limiter unavailable, admitting", "error", err)
		} else if !ok {
			return Result{}, ErrRateLimited
		}
	}

	msg := compose(sub, remoteIP, p.sender, p.recipients, p.bcc)
	id, err := p.transport.Send(ctx, msg)
	if err != nil {
		return Result{}, &DependencyError{Op: "mail dispatch", Err: err}
	}

	p.log.Info("inquiry dispatched", "apartment", sub.Apartment, "message_id", id)
	return Result{Outcome: OutcomeSent, MessageID: id}, nil
}
