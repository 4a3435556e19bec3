package resources

import (
	"net/http"

	"agrosense-backend/internal/service"

	"github.com/gorilla/mux"
)

// LoginHistoryHandlers encapsulates the login-history HTTP handlers
type LoginHistoryHandlers struct {
	service *service.Service
}

// @Summary List login history
// @Description Get the 100 most recent authentication attempts
// @Tags loginHistory
// @Produce json
// @Success 200 {array} models.LoginHistory
// @Failure 404 {object} errors.APIError
// @Router /loginHistory [get]
func (h *LoginHistoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	entries, err := h.service.ListLoginHistory(r.Context())
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

// @Summary List login history by user
// @Description Get the 100 most recent authentication attempts for one user
// @Tags loginHistory
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} models.LoginHistory
// @Failure 404 {object} errors.APIError
// @Router /loginHistory/user/{userId} [get]
func (h *LoginHistoryHandlers) ListByUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := reqID(r)

	entries, err := h.service.ListLoginHistoryByUser(r.Context(), vars["userId"])
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}
