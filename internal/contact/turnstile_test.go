package contact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnstileVerifySuccess(t *testing.T) {
	var gotSecret, gotToken, gotIP string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotSecret = r.PostFormValue("secret")
		gotToken = r.PostFormValue("response")
		gotIP = r.PostFormValue("remoteip")
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	v := NewTurnstileVerifier("shh", time.Second)
	v.endpoint = server.URL

	verdict, err := v.Verify(context.Background(), "tok-123", "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, verdict.Success)
	assert.Equal(t, "shh", gotSecret)
	assert.Equal(t, "tok-123", gotToken)
	assert.Equal(t, "203.0.113.9", gotIP)
}

func TestTurnstileVerifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response","timeout-or-duplicate"]}`))
	}))
	defer server.Close()

	v := NewTurnstileVerifier("shh", time.Second)
	v.endpoint = server.URL

	verdict, err := v.Verify(context.Background(), "stale", "")
	require.NoError(t, err, "an answered rejection is a verdict, not a transport failure")
	assert.False(t, verdict.Success)
	assert.Equal(t, []string{"invalid-input-response", "timeout-or-duplicate"}, verdict.ErrorCodes)
}

func TestTurnstileVerifyMissingSecret(t *testing.T) {
	v := NewTurnstileVerifier("", time.Second)

	_, err := v.Verify(context.Background(), "tok", "")
	assert.ErrorIs(t, err, ErrServerMisconfigured)
}

func TestTurnstileVerifyUpstreamDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	v := NewTurnstileVerifier("shh", time.Second)
	v.endpoint = server.URL

	_, err := v.Verify(context.Background(), "tok", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrServerMisconfigured)
}

func TestTurnstileVerifyBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	v := NewTurnstileVerifier("shh", time.Second)
	v.endpoint = server.URL

	_, err := v.Verify(context.Background(), "tok", "")
	assert.Error(t, err)
}
