package resources

import (
	"encoding/json"
	"net/http"

	"agrosense-backend/api/middleware"
	"agrosense-backend/internal/errors"
	"agrosense-backend/internal/service"

	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Sensors      *SensorHandlers
	Reports      *ReportHandlers
	Auth         *AuthHandlers
	LoginHistory *LoginHistoryHandlers
}

// NewResources creates a new Resources instance
func NewResources(svc *service.Service) *Resources {
	return &Resources{
		Sensors:      &SensorHandlers{service: svc},
		Reports:      &ReportHandlers{service: svc},
		Auth:         &AuthHandlers{service: svc},
		LoginHistory: &LoginHistoryHandlers{service: svc},
	}
}

// HealthCheck reports liveness and the running version.
func (r *Resources) HealthCheck(w http.ResponseWriter, req *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": nuts.GetVersion(),
	})
}

// reqID returns the id the middleware assigned, falling back to a fresh one
// for handlers invoked outside the full chain.
func reqID(r *http.Request) string {
	if id := middleware.GetRequestID(r.Context()); id != "" {
		return id
	}
	return nuts.NID("req", 12)
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// toAPIError maps a service error onto the response taxonomy. Anything that
// is not already an APIError is an internal failure with the detail hidden.
func toAPIError(err error, requestID string) *errors.APIError {
	if apiErr, ok := err.(*errors.APIError); ok {
		return apiErr.WithRequestID(requestID)
	}
	return errors.NewInternalError("internal server error", err).WithRequestID(requestID)
}
