package repository

import (
	"context"
	"errors"
	"time"

	"agrosense-backend/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ReportFilters narrows report queries; zero values mean "no filter".
type ReportFilters struct {
	Status     models.ReportStatus
	ReportType models.ReportType
}

// ReadingRepository defines the interface for sensor telemetry storage.
// Readings are insert-only; every list is capped and sorted newest first.
type ReadingRepository interface {
	Insert(ctx context.Context, reading *models.SensorReading) error
	List(ctx context.Context, limit int64) ([]models.SensorReading, error)
	ListByDevice(ctx context.Context, deviceID string, limit int64) ([]models.SensorReading, error)
	ListBySensorType(ctx context.Context, sensorType models.SensorType, limit int64) ([]models.SensorReading, error)
}

// ReportRepository defines the interface for incident report storage.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context, filters ReportFilters) ([]models.Report, error)
	ListByUser(ctx context.Context, userID string) ([]models.Report, error)
	// ListNear returns reports within maxDistance meters of the point,
	// nearest first, using the 2dsphere index.
	ListNear(ctx context.Context, longitude, latitude, maxDistance float64, filters ReportFilters) ([]models.Report, error)
	ListByDateRange(ctx context.Context, start, end time.Time, filters ReportFilters) ([]models.Report, error)
	// UpdateStatus atomically sets the status (and solutionDate when given)
	// and returns the updated document.
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus, solutionDate *time.Time) (*models.Report, error)
}

// UserUpdate carries a partial user update; nil fields are left untouched.
// PasswordHash must already be hashed by the caller.
type UserUpdate struct {
	Name         *string
	Username     *string
	PasswordHash *string
	Email        *string
	Phone        *string
	Role         *models.Role
	Status       *bool
}

// UserRepository defines the interface for account storage. Reads never
// include the password hash except GetByEmail, which feeds credential checks.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*models.User, error)
	SoftDelete(ctx context.Context, id string, when time.Time) (*models.User, error)
}

// LoginHistoryRepository defines the interface for the append-only login log.
type LoginHistoryRepository interface {
	Append(ctx context.Context, entry *models.LoginHistory) error
	List(ctx context.Context, limit int64) ([]models.LoginHistory, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.LoginHistory, error)
}

// SessionStore tracks the expiry of issued session tokens per user.
type SessionStore interface {
	Set(ctx context.Context, userID string, expiresAt time.Time) error
	// Get returns ErrNotFound when the user has no live session.
	Get(ctx context.Context, userID string) (time.Time, error)
	// Extend moves the expiry to now+window and returns the new expiry.
	Extend(ctx context.Context, userID string, window time.Duration) (time.Time, error)
}
