package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/auraadriatica/backend/internal/api/middleware"
	"github.com/auraadriatica/backend/internal/contact"
)

// maxContactBody bounds the request body; the biggest legitimate message
// is 4000 characters plus headroom for the token.
const maxContactBody = 64 << 10

// ContactResponse is the contact endpoint's success body. A silently
// accepted honeypot submission produces the same body as a sent one.
type ContactResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

// Contact serves POST /api/contact: runs the submission pipeline and maps
// its typed errors onto the status taxonomy.
func Contact(pipeline *contact.Pipeline, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var sub contact.Submission
		body := http.MaxBytesReader(w, r.Body, maxContactBody)
		if err := json.NewDecoder(body).Decode(&sub); err != nil {
			middleware.WriteFailure(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		result, err := pipeline.Submit(r.Context(), sub, clientIP(r))
		if err != nil {
			writeContactError(w, log, err)
			return
		}

		// OutcomeAcceptedSilently intentionally looks identical on the
		// wire; only the pipeline result distinguishes it.
		middleware.WriteJSON(w, http.StatusOK, ContactResponse{OK: true, ID: result.MessageID})
	}
}

func writeContactError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		verr     *contact.ValidationError
		rejected *contact.ChallengeRejectedError
		dep      *contact.DependencyError
	)
	switch {
	case errors.As(err, &verr):
		middleware.WriteFailure(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, contact.ErrMissingToken):
		middleware.WriteFailure(w, http.StatusBadRequest, "Missing challenge token")
	case errors.As(err, &rejected):
		middleware.WriteFailureWithCodes(w, http.StatusForbidden, "Challenge verification failed", rejected.Codes)
	case errors.Is(err, contact.ErrRateLimited):
		middleware.WriteFailure(w, http.StatusTooManyRequests, "Too many attempts. Please try again in a few minutes.")
	case errors.Is(err, contact.ErrServerMisconfigured):
		// Which secret is missing stays in the logs, not the response.
		log.Error("contact pipeline misconfigured", "error", err)
		middleware.WriteFailure(w, http.StatusInternalServerError, "Server misconfigured")
	case errors.As(err, &dep):
		log.Error("contact upstream failure", "op", dep.Op, "error", dep.Err)
		middleware.WriteFailure(w, http.StatusBadGateway, "Upstream service failed. Please try again.")
	default:
		log.Error("contact submission failed", "error", err)
		middleware.WriteFailure(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// clientIP extracts the submitting address, preferring edge-supplied
// headers over the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
