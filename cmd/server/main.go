// Package main is the entry point for the Aura Adriatica site backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/auraadriatica/backend/internal/api"
	"github.com/auraadriatica/backend/internal/api/handlers"
	"github.com/auraadriatica/backend/internal/calendar"
	"github.com/auraadriatica/backend/internal/config"
	"github.com/auraadriatica/backend/internal/contact"
	"github.com/auraadriatica/backend/internal/content"
	"github.com/auraadriatica/backend/internal/i18n"
	"github.com/auraadriatica/backend/internal/mail"
	"github.com/auraadriatica/backend/internal/obs"
	"github.com/auraadriatica/backend/internal/ratelimit"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	addr := flag.String("addr", ":8099", "HTTP server address")
	dataDir := flag.String("data", "/data", "Data directory for the rate-limit attempt store")
	staticDir := flag.String("static", "./static", "Directory for static site files")
	contentDir := flag.String("content", "./content", "Directory for locale and page content JSON")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK.
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := obs.NewLogger(cfg.Env)
	log.Info("starting site backend", "version", version, "env", cfg.Env)

	feeds := calendar.NewFeedService(cfg.FeedURLs, cfg.FeedCacheTTL, cfg.FeedTimeout, log)

	prewarmer := calendar.NewPrewarmer(feeds, cfg.PrewarmEvery, cfg.FeedTimeout, log)
	prewarmer.Start()

	verifier := contact.NewTurnstileVerifier(cfg.TurnstileSecret, cfg.UpstreamTimeout)

	var transport mail.Transport
	var limiter contact.Limiter
	var limiterDB handlers.Pinger
	switch cfg.MailTransport {
	case config.TransportSMTP:
		transport = mail.NewSMTPTransport(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Timeout:  cfg.UpstreamTimeout,
		})
		// The relay has no provider-side abuse controls, so the legacy
		// per-address throttle rides along with it.
		store, err := ratelimit.Open(
			filepath.Join(*dataDir, "attempts.db"),
			cfg.RateLimitWindow, cfg.RateLimitMax,
		)
		if err != nil {
			log.Error("rate-limit store unavailable, throttle disabled", "error", err)
		} else {
			defer store.Close()
			limiter = store
			limiterDB = store
		}
	default:
		if cfg.ResendAPIKey != "" {
			transport = mail.NewResendTransport(cfg.ResendAPIKey, cfg.UpstreamTimeout)
		} else {
			log.Error("RESEND_API_KEY missing; contact submissions will fail with 500")
		}
	}

	pipeline := contact.NewPipeline(
		contact.NewValidator(),
		verifier,
		limiter,
		transport,
		cfg.ContactFrom,
		cfg.ContactTo,
		cfg.ContactBcc,
		log,
	)

	router := api.NewRouter(api.Deps{
		Feeds:     feeds,
		Pipeline:  pipeline,
		Catalog:   i18n.NewCatalog(*contentDir),
		Content:   content.NewLoader(*contentDir),
		LimiterDB: limiterDB,
		StaticDir: *staticDir,
		Log:       log,
	})

	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	prewarmer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	resp, err := http.Get("http://localhost" + addr + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
