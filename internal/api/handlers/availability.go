// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/auraadriatica/backend/internal/api/middleware"
	"github.com/auraadriatica/backend/internal/calendar"
)

// BookingsResponse is the feed endpoint's success body.
type BookingsResponse struct {
	Bookings []calendar.BookingRange `json:"bookings"`
}

// Bookings serves GET /api/ical/{apt}: the apartment's booked ranges as
// JSON for the availability calendar widget.
func Bookings(svc *calendar.FeedService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["apt"]
		if slug == "" {
			// Fallback for widget builds that query instead of routing.
			slug = r.URL.Query().Get("apt")
		}

		bookings, err := svc.Bookings(r.Context(), slug)
		if err != nil {
			writeFeedError(w, log, slug, err)
			return
		}

		// Short client cache, a bit longer at the edge: bookings change
		// within minutes, but widget reloads should stay cheap.
		w.Header().Set("Cache-Control", "public, max-age=120, s-maxage=300")
		middleware.WriteJSON(w, http.StatusOK, BookingsResponse{Bookings: bookings})
	}
}

func writeFeedError(w http.ResponseWriter, log *slog.Logger, slug string, err error) {
	var upstream *calendar.UpstreamError
	switch {
	case errors.Is(err, calendar.ErrUnknownApartment):
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Unknown apartment",
			"got":   slug,
		})
	case errors.Is(err, calendar.ErrFeedNotConfigured):
		log.Error("feed URL missing from configuration", "apartment", slug)
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Missing feed configuration",
			"apt":   slug,
		})
	case errors.As(err, &upstream):
		log.Warn("feed upstream failure", "apartment", slug, "status", upstream.StatusCode)
		middleware.WriteJSON(w, http.StatusBadGateway, map[string]string{
			"error":  fmt.Sprintf("Upstream %d", upstream.StatusCode),
			"sample": upstream.Sample,
		})
	default:
		log.Error("feed fetch failed", "apartment", slug, "error", err)
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Fetch failed",
		})
	}
}
