package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// providerBodyLimit bounds how much of a provider error body is retained.
const providerBodyLimit = 512

// ResendTransport submits messages to the Resend transactional email API.
type ResendTransport struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewResendTransport creates a transport authenticated with the given API key.
func NewResendTransport(apiKey string, timeout time.Duration) *ResendTransport {
	return &ResendTransport{
		apiKey:   apiKey,
		endpoint: resendEndpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Bcc     []string `json:"bcc,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send submits the message. A non-2xx provider response is returned as a
// *ProviderError carrying the status and a truncated body.
func (t *ResendTransport) Send(ctx context.Context, msg Message) (string, error) {
	payload, err := json.Marshal(resendPayload{
		From:    msg.From,
		To:      msg.To,
		Bcc:     msg.Bcc,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling mail provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, providerBodyLimit))
		return "", &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// Dispatch succeeded; a missing id is not worth failing over.
		return "", nil
	}
	return out.ID, nil
}
