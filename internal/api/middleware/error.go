// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// WriteJSON writes any payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// FailureResponse is the error envelope every endpoint shares.
type FailureResponse struct {
	OK    bool     `json:"ok"`
	Error string   `json:"error"`
	Code  []string `json:"code,omitempty"`
}

// WriteFailure writes the standard {ok:false, error} envelope.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, FailureResponse{OK: false, Error: message})
}

// WriteFailureWithCodes includes upstream diagnostic codes in the envelope.
func WriteFailureWithCodes(w http.ResponseWriter, status int, message string, codes []string) {
	WriteJSON(w, status, FailureResponse{OK: false, Error: message, Code: codes})
}

// Recovery converts handler panics into a generic 500. Stack traces go to
// the log, never to the client.
func Recovery(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					WriteFailure(w, http.StatusInternalServerError, "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
