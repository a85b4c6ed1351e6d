package handlers

import (
	"net/http"

	"github.com/auraadriatica/backend/internal/api/middleware"
)

// HealthResponse is the health check body.
type HealthResponse struct {
	Status     string   `json:"status"`
	Apartments []string `json:"apartments"`
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping() error
}

// HealthCheck reports process liveness, the configured apartments, and the
// attempt store's reachability when the throttle is enabled.
func HealthCheck(apartments []string, limiterDB Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		if limiterDB != nil && limiterDB.Ping() != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		middleware.WriteJSON(w, code, HealthResponse{
			Status:     status,
			Apartments: apartments,
		})
	}
}
