package service

import (
	"context"
	"errors"
	"time"

	"agrosense-backend/internal/audit"
	apierrors "agrosense-backend/internal/errors"
	"agrosense-backend/internal/models"
	"agrosense-backend/internal/repository"

	nuts "github.com/vaudience/go-nuts"
)

// Login failure reasons recorded in the login history.
const (
	reasonUserNotFound    = "user not found"
	reasonAccountInactive = "account inactive"
	reasonInvalidPassword = "invalid password"
)

// LoginInput carries the credentials and request metadata of one attempt.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult is a successful authentication: a signed token plus the
// account it belongs to (password hash stripped).
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Login verifies credentials, issues a session token and records the
// attempt in the login history whether it succeeds or not.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return nil, apierrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordAttempt(ctx, "", in, false, reasonUserNotFound)
			return nil, apierrors.NewAuthError("invalid credentials", nil)
		}
		return nil, apierrors.NewDatabaseError("failed to look up user", err)
	}

	userID := user.ID.Hex()
	if !user.Status {
		s.recordAttempt(ctx, userID, in, false, reasonAccountInactive)
		return nil, apierrors.NewAuthError("invalid credentials", nil)
	}
	if !s.hasher.Verify(user.Password, in.Password) {
		s.recordAttempt(ctx, userID, in, false, reasonInvalidPassword)
		return nil, apierrors.NewAuthError("invalid credentials", nil)
	}

	token, expiresAt, err := s.signer.Sign(userID, user.Email, string(user.Role))
	if err != nil {
		return nil, apierrors.NewInternalError("failed to sign token", err)
	}

	if err := s.sessions.Set(ctx, userID, expiresAt); err != nil {
		nuts.L.Warnf("[AuthService] Failed to store session for user %s: %v", userID, err)
	}
	s.recordAttempt(ctx, userID, in, true, "")

	user.Password = ""
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// recordAttempt appends to the login history; a failure to record must not
// break the login flow itself.
func (s *Service) recordAttempt(ctx context.Context, userID string, in LoginInput, success bool, reason string) {
	entry := &models.LoginHistory{
		UserID:        userID,
		Email:         in.Email,
		IPAddress:     in.IPAddress,
		UserAgent:     in.UserAgent,
		LoginAt:       time.Now().UTC(),
		Success:       success,
		FailureReason: reason,
	}
	if err := s.audit.RecordAttempt(ctx, entry); err != nil {
		nuts.L.Warnf("[AuthService] Failed to record login attempt for %s: %v", in.Email, err)
	}
}

// SessionExpiry returns when the user's current session token expires.
func (s *Service) SessionExpiry(ctx context.Context, userID string) (time.Time, error) {
	if userID == "" {
		return time.Time{}, apierrors.NewValidationError("userId is required", nil)
	}

	expiresAt, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return time.Time{}, apierrors.NewNotFoundError("no active session for this user", err)
		}
		return time.Time{}, apierrors.NewInternalError("failed to read session", err)
	}
	return expiresAt, nil
}

// ExtendSession pushes the user's session expiry to now plus the configured
// token expiry window.
func (s *Service) ExtendSession(ctx context.Context, userID string) (time.Time, error) {
	if userID == "" {
		return time.Time{}, apierrors.NewValidationError("userId is required", nil)
	}

	expiresAt, err := s.sessions.Extend(ctx, userID, s.tokenExpiry)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return time.Time{}, apierrors.NewNotFoundError("no active session for this user", err)
		}
		return time.Time{}, apierrors.NewInternalError("failed to extend session", err)
	}
	return expiresAt, nil
}

// UserInput carries the fields of a user create request, with the plaintext
// password separated from the stored model.
type UserInput struct {
	Name     string
	Username string
	Password string
	Email    string
	Phone    string
	Role     string
}

// CreateUser hashes the password and persists a new account.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	var missing []string
	for field, value := range map[string]string{
		"name": in.Name, "username": in.Username, "password": in.Password,
		"email": in.Email, "phone": in.Phone,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, apierrors.NewValidationError("missing required fields", nil).
			WithDetails(map[string]any{"required": missing})
	}

	role := models.RoleUser
	if in.Role != "" {
		if !models.IsValidRole(in.Role) {
			return nil, apierrors.NewValidationError("invalid role", nil).
				WithDetails(map[string]any{"valid": []models.Role{models.RoleAdmin, models.RoleUser}})
		}
		role = models.Role(in.Role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apierrors.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Name:       in.Name,
		Username:   in.Username,
		Password:   hash,
		Email:      in.Email,
		Phone:      in.Phone,
		Role:       role,
		Status:     true,
		CreateDate: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierrors.NewValidationError("username or email already exists", err)
		}
		return nil, apierrors.NewDatabaseError("failed to create user", err)
	}

	user.Password = ""
	return user, nil
}

// ListUsers returns every account, password hashes excluded.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apierrors.NewDatabaseError("failed to list users", err)
	}
	return users, nil
}

// GetUserByUsername looks up one account by its unique username.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, apierrors.NewValidationError("userName is required", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewNotFoundError("user not found", err)
		}
		return nil, apierrors.NewDatabaseError("failed to look up user", err)
	}
	return user, nil
}

// UserUpdateInput carries a partial user update; nil fields are untouched.
type UserUpdateInput struct {
	Name     *string
	Username *string
	Password *string
	Email    *string
	Phone    *string
	Role     *string
	Status   *bool
}

// UpdateUser applies a partial update. A supplied plaintext password is
// re-hashed before it is stored; everything else is passed through.
func (s *Service) UpdateUser(ctx context.Context, id string, in UserUpdateInput) (*models.User, error) {
	if id == "" {
		return nil, apierrors.NewValidationError("userId is required", nil)
	}

	update := repository.UserUpdate{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
		Status:   in.Status,
	}

	if in.Role != nil {
		if !models.IsValidRole(*in.Role) {
			return nil, apierrors.NewValidationError("invalid role", nil).
				WithDetails(map[string]any{"valid": []models.Role{models.RoleAdmin, models.RoleUser}})
		}
		role := models.Role(*in.Role)
		update.Role = &role
	}

	if in.Password != nil && *in.Password != "" {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apierrors.NewInternalError("failed to hash password", err)
		}
		update.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apierrors.NewNotFoundError("user not found", err)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apierrors.NewValidationError("username or email already exists", err)
		}
		return nil, apierrors.NewDatabaseError("failed to update user", err)
	}
	return user, nil
}

// DeleteUser soft-deletes an account: status goes false and deleteDate is
// stamped; the document itself stays.
func (s *Service) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, apierrors.NewValidationError("userId is required", nil)
	}

	user, err := s.users.SoftDelete(ctx, id, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewNotFoundError("user not found", err)
		}
		return nil, apierrors.NewDatabaseError("failed to delete user", err)
	}

	s.audit.Emit(audit.EventUserDeleted, id)
	return user, nil
}
