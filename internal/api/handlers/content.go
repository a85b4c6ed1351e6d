package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/auraadriatica/backend/internal/api/middleware"
	"github.com/auraadriatica/backend/internal/content"
	"github.com/auraadriatica/backend/internal/i18n"
)

// Translations serves GET /api/i18n/{lang}: the UI string bundle for a
// locale, falling back to English for unknown or malformed locales.
func Translations(catalog *i18n.Catalog, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc := i18n.Locale(mux.Vars(r)["lang"])

		bundle, err := catalog.Bundle(loc)
		if err != nil {
			log.Error("translation bundles unavailable", "locale", loc, "error", err)
			middleware.WriteFailure(w, http.StatusInternalServerError, "Translations unavailable")
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=300")
		middleware.WriteJSON(w, http.StatusOK, bundle)
	}
}

// PageContent serves GET /api/content/{page}/{lang}: a schema-validated
// content document. Invalid content files fail closed with a 500 so the
// front end renders its placeholder instead of guessing at fields.
func PageContent(loader *content.Loader, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		page, lang := vars["page"], vars["lang"]

		doc, err := loader.Load(page, lang)
		switch {
		case errors.Is(err, content.ErrInvalidContent):
			log.Error("content file rejected", "page", page, "lang", lang, "error", err)
			middleware.WriteFailure(w, http.StatusInternalServerError, "Content unavailable")
			return
		case errors.Is(err, os.ErrNotExist):
			middleware.WriteFailure(w, http.StatusNotFound, "No such page")
			return
		case err != nil:
			log.Error("content load failed", "page", page, "lang", lang, "error", err)
			middleware.WriteFailure(w, http.StatusInternalServerError, "Content unavailable")
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=300")
		middleware.WriteJSON(w, http.StatusOK, doc)
	}
}
