package service

import (
	"time"

	"agrosense-backend/internal/audit"
	"agrosense-backend/internal/auth"
	apierrors "agrosense-backend/internal/errors"
	"agrosense-backend/internal/repository"
)

// Service contains all repositories and service-wide dependencies
type Service struct {
	readings repository.ReadingRepository
	reports  repository.ReportRepository
	users    repository.UserRepository
	sessions repository.SessionStore
	hasher   auth.PasswordHasher
	signer   auth.TokenSigner
	audit    *audit.Service

	tokenExpiry time.Duration
}

// New creates a new service instance
func New(
	readings repository.ReadingRepository,
	reports repository.ReportRepository,
	users repository.UserRepository,
	sessions repository.SessionStore,
	hasher auth.PasswordHasher,
	signer auth.TokenSigner,
	auditSvc *audit.Service,
	tokenExpiry time.Duration,
) *Service {
	return &Service{
		readings:    readings,
		reports:     reports,
		users:       users,
		sessions:    sessions,
		hasher:      hasher,
		signer:      signer,
		audit:       auditSvc,
		tokenExpiry: tokenExpiry,
	}
}

// Audit exposes the audit service so callers can subscribe to domain events.
func (s *Service) Audit() *audit.Service {
	return s.audit
}

// Validate checks if all required dependencies are initialized
func (s *Service) Validate() error {
	if s.readings == nil {
		return ErrMissingDependency("readings")
	}
	if s.reports == nil {
		return ErrMissingDependency("reports")
	}
	if s.users == nil {
		return ErrMissingDependency("users")
	}
	if s.sessions == nil {
		return ErrMissingDependency("sessions")
	}
	if s.hasher == nil {
		return ErrMissingDependency("hasher")
	}
	if s.signer == nil {
		return ErrMissingDependency("signer")
	}
	if s.audit == nil {
		return ErrMissingDependency("audit")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return apierrors.NewInternalError("missing dependency: "+name, nil)
}
