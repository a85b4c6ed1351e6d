package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Prewarmer periodically refreshes every configured feed so the first
// widget load after cache expiry does not pay the upstream round trip.
type Prewarmer struct {
	cron    *cron.Cron
	svc     *FeedService
	timeout time.Duration
	log     *slog.Logger
}

// NewPrewarmer creates a prewarmer that refreshes all feeds on the given
// interval. Intervals under a minute are clamped to a minute to stay polite
// to the booking platforms.
func NewPrewarmer(svc *FeedService, interval, timeout time.Duration, log *slog.Logger) *Prewarmer {
	if interval < time.Minute {
		interval = time.Minute
	}
	p := &Prewarmer{
		cron:    cron.New(),
		svc:     svc,
		timeout: timeout,
		log:     log,
	}
	p.cron.AddFunc(fmt.Sprintf("@every %s", interval), p.refreshAll)
	return p
}

// Start begins the refresh schedule and performs one immediate warm-up.
func (p *Prewarmer) Start() {
	go p.refreshAll()
	p.cron.Start()
}

// Stop halts the schedule. Running refreshes are allowed to finish.
func (p *Prewarmer) Stop() {
	p.cron.Stop()
}

func (p *Prewarmer) refreshAll() {
	for _, apt := range p.svc.Apartments() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if _, err := p.svc.Refresh(ctx, apt); err != nil {
			p.log.Warn("feed prewarm failed", "apartment", apt, "error", err)
		}
		cancel()
	}
}
