package resources

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"agrosense-backend/internal/errors"
	"agrosense-backend/internal/service"

	"github.com/gorilla/mux"
)

// AuthHandlers encapsulates the auth-related HTTP handlers
type AuthHandlers struct {
	service *service.Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	Status   *bool   `json:"status"`
}

type sessionResponse struct {
	UserID           string    `json:"userId"`
	ExpiresAt        time.Time `json:"expiresAt"`
	ExpiresInSeconds int64     `json:"expiresInSeconds"`
}

// @Summary Log in
// @Description Verify credentials, issue a session token and record the attempt
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Email and password"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} errors.APIError
// @Router /auth/login-user [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	result, err := h.service.Login(r.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// @Summary Get session expiry
// @Description Get when the user's current session token expires
// @Tags auth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} sessionResponse
// @Failure 404 {object} errors.APIError
// @Router /auth/getTime/{userId} [get]
func (h *AuthHandlers) GetSessionExpiry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := reqID(r)

	expiresAt, err := h.service.SessionExpiry(r.Context(), vars["userId"])
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, newSessionResponse(vars["userId"], expiresAt))
}

// @Summary Extend session
// @Description Push the user's session expiry to now plus the configured window
// @Tags auth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} sessionResponse
// @Failure 404 {object} errors.APIError
// @Router /auth/update/{userId} [patch]
func (h *AuthHandlers) ExtendSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := reqID(r)

	expiresAt, err := h.service.ExtendSession(r.Context(), vars["userId"])
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, newSessionResponse(vars["userId"], expiresAt))
}

// @Summary Create a user
// @Description Create an account; the password is stored as a bcrypt hash
// @Tags auth
// @Accept json
// @Produce json
// @Param user body createUserRequest true "User details"
// @Success 201 {object} models.User
// @Failure 400 {object} errors.APIError
// @Router /auth/user [post]
func (h *AuthHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	user, err := h.service.CreateUser(r.Context(), service.UserInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

// @Summary List users
// @Description Get all accounts; password hashes are never included
// @Tags auth
// @Produce json
// @Success 200 {array} models.User
// @Router /auth/users [get]
func (h *AuthHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

// @Summary Get user by username
// @Tags auth
// @Produce json
// @Param userName path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} errors.APIError
// @Router /auth/username/{userName} [get]
func (h *AuthHandlers) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := reqID(r)

	user, err := h.service.GetUserByUsername(r.Context(), vars["userName"])
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// @Summary Update a user
// @Description Partial update; a supplied password is re-hashed before storage
// @Tags auth
// @Accept json
// @Produce json
// @Param userId path string true "User ID"
// @Param user body updateUserRequest true "Fields to update"
// @Success 200 {object} models.User
// @Failure 404 {object} errors.APIError
// @Router /auth/updateUser/{userId} [patch]
func (h *AuthHandlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := reqID(r)

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), vars["userId"], service.UserUpdateInput{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// @Summary Soft-delete a user
// @Description Mark the account inactive and stamp deleteDate; the document stays
// @Tags auth
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} errors.APIError
// @Router /auth/deleteUser/{userId} [patch]
func (h *AuthHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := reqID(r)

	user, err := h.service.DeleteUser(r.Context(), vars["userId"])
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

func newSessionResponse(userID string, expiresAt time.Time) sessionResponse {
	return sessionResponse{
		UserID:           userID,
		ExpiresAt:        expiresAt,
		ExpiresInSeconds: int64(time.Until(expiresAt).Seconds()),
	}
}

// clientIP prefers the forwarding headers set by the reverse proxy and
// falls back to the socket peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
