package audit

import (
	"context"
	"fmt"
	"time"

	"agrosense-backend/internal/models"
	"agrosense-backend/internal/repository"

	nuts "github.com/vaudience/go-nuts"
)

// Domain events emitted by the service layer.
const (
	EventLogin          = "auth.login"
	EventLoginFailed    = "auth.login_failed"
	EventReportResolved = "report.resolved"
	EventUserDeleted    = "user.deleted"
)

// Service records authentication attempts and fans out domain events.
type Service struct {
	history repository.LoginHistoryRepository
	events  *nuts.EventEmitter
}

// New creates a new audit Service
func New(history repository.LoginHistoryRepository) *Service {
	return &Service{
		history: history,
		events:  nuts.NewEventEmitter(),
	}
}

// History exposes the underlying login-history repository for reads.
func (s *Service) History() repository.LoginHistoryRepository {
	return s.history
}

// RecordAttempt appends one login-history entry. Every authentication
// attempt is recorded, successful or not.
func (s *Service) RecordAttempt(ctx context.Context, entry *models.LoginHistory) error {
	if entry.LoginAt.IsZero() {
		entry.LoginAt = time.Now().UTC()
	}

	if err := s.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append login history: %w", err)
	}

	if entry.Success {
		s.events.Emit(EventLogin, entry.UserID)
	} else {
		s.events.Emit(EventLoginFailed, entry.Email)
	}
	return nil
}

// Emit publishes a domain event with the affected document id.
func (s *Service) Emit(event string, id string) {
	s.events.Emit(event, id)
}

// OnEvent registers a callback for a domain event
func (s *Service) OnEvent(event string, handler func(id string)) {
	s.events.On(event, "audit_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}
