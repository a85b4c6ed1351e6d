package contact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auraadriatica/backend/internal/mail"
)

type fakeVerifier struct {
	verdict VerifyResult
	err     error
	calls   int
}

func (f *fakeVerifier) Verify(ctx context.Context, token, remoteIP string) (VerifyResult, error) {
	f.calls++
	return f.verdict, f.err
}

type fakeTransport struct {
	id    string
	err   error
	calls int
	last  mail.Message
}

func (f *fakeTransport) Send(ctx context.Context, msg mail.Message) (string, error) {
	f.calls++
	f.last = msg
	return f.id, f.err
}

type fakeLimiter struct {
	allow bool
	err   error
	calls int
}

func (f *fakeLimiter) Allow(ctx context.Context, source string, now time.Time) (bool, error) {
	f.calls++
	return f.allow, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(verifier ChallengeVerifier, limiter Limiter, transport mail.Transport) *Pipeline {
	return NewPipeline(
		NewValidator(),
		verifier,
		limiter,
		transport,
		"Aura Adriatica <info@auraadriatica.com>",
		[]string{"info@auraadriatica.com"},
		nil,
		quietLogger(),
	)
}

func TestSubmitSuccess(t *testing.T) {
	verifier := &fakeVerifier{verdict: VerifyResult{Success: true}}
	transport := &fakeTransport{id: "msg_1"}
	p := newTestPipeline(verifier, nil, transport)

	sub := Submission{Name: "Jane", Email: "jane@example.com", Message: "Hi", Token: "valid"}
	res, err := p.Submit(context.Background(), sub, "198.51.100.7")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, "msg_1", res.MessageID)

	require.Equal(t, 1, transport.calls, "dispatcher must be called exactly once")
	assert.Equal(t, "jane@example.com", transport.last.ReplyTo)
	assert.Equal(t, []string{"info@auraadriatica.com"}, transport.last.To)
}

func TestSubmitHoneypotAcceptsSilently(t *testing.T) {
	verifier := &fakeVerifier{verdict: VerifyResult{Success: true}}
	transport := &fakeTransport{}
	p := newTestPipeline(verifier, nil, transport)

	sub := validSubmission()
	sub.Website = "https://spam.example"

	res, err := p.Submit(context.Background(), sub, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAcceptedSilently, res.Outcome)
	assert.Zero(t, transport.calls, "honeypot submissions must not dispatch mail")
	assert.Zero(t, verifier.calls, "honeypot submissions must not hit the challenge service")
}

func TestSubmitValidationFailure(t *testing.T) {
	verifier := &fakeVerifier{verdict: VerifyResult{Success: true}}
	transport := &fakeTransport{}
	p := newTestPipeline(verifier, nil, transport)

	sub := validSubmission()
	sub.Message = ""

	_, err := p.Submit(context.Background(), sub, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, verifier.calls)
	assert.Zero(t, transport.calls)
}

func TestSubmitMissingToken(t *testing.T) {
	verifier := &fakeVerifier{verdict: VerifyResult{Success: true}}
	transport := &fakeTransport{}
	p := newTestPipeline(verifier, nil, transport)

	sub := validSubmission()
	sub.Token = ""

	_, err := p.Submit(context.Background(), sub, "")
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Zero(t, verifier.calls)
}

func TestSubmitChallengeRejected(t *testing.T) {
	verifier := &fakeVerifier{verdict: VerifyResult{Success: false, ErrorCodes: []string{"invalid-input-response"}}}
	transport := &fakeTransport{}
	p := newTestPipeline(verifier, nil, transport)

	_, err := p.Submit(context.Background(), validSubmission(), "")
	var rejected *ChallengeRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, []string{"invalid-input-response"}, rejected.Codes)
	assert.Zero(t, transport.calls, "a rejected challenge must never reach the dispatcher")
}

func TestSubmitChallengeServiceDown(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("connection refused")}
	transport := &fakeTransport{}
	p := newTestPipeline(verifier, nil, transport)

	_, err := p.Submit(context.Background(), validSubmission(), "")
	var dep *DependencyError
	require.ErrorAs(t, err, &dep)
	assert.Equal(t, "challenge verification", dep.Op)
	assert.Zero(t, transport.calls)
}

func TestSubmitRateLimited(t *testing.T) {
	verifier := &fakeVerifier{verdict: VerifyResult{Success: true}}
	transport := &fakeTransport{}
	limiter := &fakeLimiter{allow: false}
	p := newTestPipeline(verifier, limiter, transport)

	_, err := p.Submit(context.Background(), validSubmission(), "198.51.100.7")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, limiter.calls)
	assert.Zero(t, transport.calls)
}

func TestSubmitLimiterErrorAdmits(t *testing.T) {
	verifier := &fakeVerifier{verdict: VerifyResult{Success: true}}
	transport := &fakeTransport{id: "msg_2"}
	limiter := &fakeLimiter{err: errors.New("database is locked")}
	p := newTestPipeline(verifier, limiter, transport)

	res, err := p.Submit(context.Background(), validSubmission(), "198.51.100.7")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
}

func TestSubmitDispatchFailure(t *testing.T) {
	verifier := &fakeVerifier{verdict: VerifyResult{Success: true}}
	transport := &fakeTransport{err: &mail.ProviderError{StatusCode: 403, Body: "domain is not verified"}}
	p := newTestPipeline(verifier, nil, transport)

	_, err := p.Submit(context.Background(), validSubmission(), "")
	var dep *DependencyError
	require.ErrorAs(t, err, &dep)
	assert.Equal(t, "mail dispatch", dep.Op)

	var provErr *mail.ProviderError
	assert.ErrorAs(t, err, &provErr)
}

func TestSubmitMisconfigured(t *testing.T) {
	p := NewPipeline(NewValidator(), nil, nil, nil, "", nil, nil, quietLogger())

	_, err := p.Submit(context.Background(), validSubmission(), "")
	assert.ErrorIs(t, err, ErrServerMisconfigured)
}
