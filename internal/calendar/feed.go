package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// userAgent identifies our fetcher to the booking platforms hosting the feeds.
const userAgent = "AuraAdriaticaBot/1.0 (+https://auraadriatica.com)"

// upstreamSampleLimit bounds how much of a failing upstream body is kept
// for diagnostics.
const upstreamSampleLimit = 200

var (
	// ErrUnknownApartment means the requested slug is not in the alias table.
	ErrUnknownApartment = errors.New("unknown apartment")

	// ErrFeedNotConfigured means the apartment is known but its feed URL
	// is missing from server configuration.
	ErrFeedNotConfigured = errors.New("feed URL not configured")
)

// UpstreamError reports a non-success response from the feed host.
type UpstreamError struct {
	StatusCode int
	Sample     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// aliases is the fixed table of apartments we publish calendars for.
// Unknown slugs are rejected before any network call.
var aliases = map[string]string{
	"olive": "olive",
	"onyx":  "onyx",
}

// FeedService resolves apartment slugs to subscription feeds, fetches them
// and caches parsed bookings so repeated widget loads stay cheap.
type FeedService struct {
	feeds      map[string]string
	httpClient *http.Client
	cache      *cache.Cache
	log        *slog.Logger
}

// NewFeedService creates a feed service. feeds maps apartment keys to
// subscription URLs; entries for unknown apartments are ignored. ttl bounds
// cache freshness (bookings change, so minutes not hours).
func NewFeedService(feeds map[string]string, ttl, timeout time.Duration, log *slog.Logger) *FeedService {
	known := make(map[string]string, len(feeds))
	for apt, url := range feeds {
		if _, ok := aliases[apt]; ok && url != "" {
			known[apt] = url
		}
	}
	return &FeedService{
		feeds: known,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache.New(ttl, 2*ttl),
		log:   log,
	}
}

// Resolve normalizes a slug and maps it through the alias table.
func Resolve(slug string) (string, error) {
	apt := strings.ToLower(strings.TrimSpace(slug))
	key, ok := aliases[apt]
	if !ok {
		return "", ErrUnknownApartment
	}
	return key, nil
}

// Apartments lists the configured apartment keys in stable order.
func (s *FeedService) Apartments() []string {
	keys := make([]string, 0, len(s.feeds))
	for apt := range s.feeds {
		keys = append(keys, apt)
	}
	sort.Strings(keys)
	return keys
}

// Bookings returns the current booking ranges for an apartment slug,
// served from cache when fresh.
func (s *FeedService) Bookings(ctx context.Context, slug string) ([]BookingRange, error) {
	key, err := Resolve(slug)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(key); ok {
		return cached.([]BookingRange), nil
	}

	return s.Refresh(ctx, key)
}

// Refresh fetches and parses the feed for a known apartment key, bypassing
// the cache, and stores the result.
func (s *FeedService) Refresh(ctx context.Context, key string) ([]BookingRange, error) {
	feedURL, ok := s.feeds[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFeedNotConfigured, key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		sample, _ := io.ReadAll(io.LimitReader(resp.Body, upstreamSampleLimit))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Sample: string(sample)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed body: %w", err)
	}

	bookings := Parse(string(raw))
	s.cache.Set(key, bookings, cache.DefaultExpiration)
	s.log.Debug("feed refreshed", "apartment", key, "bookings", len(bookings))
	return bookings, nil
}
