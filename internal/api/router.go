// Package api provides HTTP routing for the site backend.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/auraadriatica/backend/internal/api/handlers"
	"github.com/auraadriatica/backend/internal/api/middleware"
	"github.com/auraadriatica/backend/internal/calendar"
	"github.com/auraadriatica/backend/internal/contact"
	"github.com/auraadriatica/backend/internal/content"
	"github.com/auraadriatica/backend/internal/i18n"
)

// Deps carries everything the routes need.
type Deps struct {
	Feeds     *calendar.FeedService
	Pipeline  *contact.Pipeline
	Catalog   *i18n.Catalog
	Content   *content.Loader
	LimiterDB handlers.Pinger
	StaticDir string
	Log       *slog.Logger
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(d.Log))
	r.Use(middleware.Recovery(d.Log))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handlers.HealthCheck(d.Feeds.Apartments(), d.LimiterDB)).Methods("GET")

	api.HandleFunc("/ical/{apt}", handlers.Bookings(d.Feeds, d.Log)).Methods("GET")
	api.HandleFunc("/ical", handlers.Bookings(d.Feeds, d.Log)).Methods("GET")

	api.HandleFunc("/contact", handlers.Contact(d.Pipeline, d.Log)).Methods("POST", "OPTIONS")

	api.HandleFunc("/i18n/{lang}", handlers.Translations(d.Catalog, d.Log)).Methods("GET")
	api.HandleFunc("/content/{page}/{lang}", handlers.PageContent(d.Content, d.Log)).Methods("GET")

	// Serve the static marketing site.
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(d.StaticDir)))

	return r
}
