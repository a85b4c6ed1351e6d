// Package config loads server configuration from the environment. Secrets
// and credentials are environment-supplied only, never hard-coded.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Transport names for the contact pipeline's mail dispatch path.
const (
	TransportResend = "resend"
	TransportSMTP   = "smtp"
)

// Config aggregates everything the server reads from the environment.
type Config struct {
	Env string

	// Feed fetching.
	FeedURLs     map[string]string
	FeedCacheTTL time.Duration
	FeedTimeout  time.Duration
	PrewarmEvery time.Duration

	// Contact pipeline.
	TurnstileSecret string
	MailTransport   string
	ResendAPIKey    string
	ContactFrom     string
	ContactTo       []string
	ContactBcc      []string
	UpstreamTimeout time.Duration

	// SMTP relay (legacy dispatch path).
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// Rate limiting (SMTP path only).
	RateLimitWindow time.Duration
	RateLimitMax    int
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env: getEnv("APP_ENV", "dev"),
		FeedURLs: map[string]string{
			"olive": os.Getenv("OLIVE_ICS_URL"),
			"onyx":  os.Getenv("ONYX_ICS_URL"),
		},
		TurnstileSecret: os.Getenv("TURNSTILE_SECRET"),
		MailTransport:   strings.ToLower(getEnv("MAIL_TRANSPORT", TransportResend)),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		ContactFrom:     os.Getenv("CONTACT_FROM"),
		ContactTo:       splitList(getEnv("CONTACT_TO", "info@auraadriatica.com")),
		ContactBcc:      splitList(os.Getenv("CONTACT_BCC")),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.zoho.eu"),
		SMTPUsername:    getEnv("SMTP_USERNAME", "info@auraadriatica.com"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
	}

	if cfg.MailTransport != TransportResend && cfg.MailTransport != TransportSMTP {
		return Config{}, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.MailTransport)
	}

	var err error
	if cfg.FeedCacheTTL, err = parseDurationEnv("FEED_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.FeedTimeout, err = parseDurationEnv("FEED_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PrewarmEvery, err = parseDurationEnv("FEED_PREWARM_INTERVAL", 4*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.UpstreamTimeout, err = parseDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitWindow, err = parseDurationEnv("RATE_LIMIT_WINDOW", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitMax, err = parseIntEnv("RATE_LIMIT_MAX", 5); err != nil {
		return Config{}, err
	}
	if cfg.SMTPPort, err = parseIntEnv("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns an environment variable value or a default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
