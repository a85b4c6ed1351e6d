package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const turnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// VerifyResult is the challenge service's verdict on a token.
type VerifyResult struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// ChallengeVerifier checks a client-supplied proof-of-human token against
// the external verification service.
type ChallengeVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (VerifyResult, error)
}

// TurnstileVerifier verifies tokens against Cloudflare Turnstile.
type TurnstileVerifier struct {
	secret     string
	endpoint   string
	httpClient *http.Client
}

// NewTurnstileVerifier creates a verifier using the shared site secret.
func NewTurnstileVerifier(secret string, timeout time.Duration) *TurnstileVerifier {
	return &TurnstileVerifier{
		secret:   secret,
		endpoint: turnstileVerifyURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Verify posts the token to the siteverify endpoint. A missing secret is a
// configuration error; a transport or decode failure is an upstream error.
// Neither is ever treated as a pass.
func (v *TurnstileVerifier) Verify(ctx context.Context, token, remoteIP string) (VerifyResult, error) {
	if v.secret == "" {
		return VerifyResult{}, fmt.Errorf("%w: challenge secret missing", ErrServerMisconfigured)
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return VerifyResult{}, fmt.Errorf("building verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("calling challenge service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VerifyResult{}, fmt.Errorf("challenge service returned status %d", resp.StatusCode)
	}

	var result VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return VerifyResult{}, fmt.Errorf("decoding verification response: %w", err)
	}
	return result, nil
}
