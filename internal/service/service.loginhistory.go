package service

import (
	"context"

	apierrors "agrosense-backend/internal/errors"
	"agrosense-backend/internal/models"
)

// ListLoginHistory returns the most recent authentication attempts overall.
func (s *Service) ListLoginHistory(ctx context.Context) ([]models.LoginHistory, error) {
	entries, err := s.audit.History().List(ctx, maxListResults)
	if err != nil {
		return nil, apierrors.NewDatabaseError("failed to list login history", err)
	}
	if len(entries) == 0 {
		return nil, apierrors.NewNotFoundError("no login history found", nil)
	}
	return entries, nil
}

// ListLoginHistoryByUser returns the most recent attempts for one user.
func (s *Service) ListLoginHistoryByUser(ctx context.Context, userID string) ([]models.LoginHistory, error) {
	if userID == "" {
		return nil, apierrors.NewValidationError("userId is required", nil)
	}

	entries, err := s.audit.History().ListByUser(ctx, userID, maxListResults)
	if err != nil {
		return nil, apierrors.NewDatabaseError("failed to list login history", err)
	}
	if len(entries) == 0 {
		return nil, apierrors.NewNotFoundError("no login history found for the specified user", nil)
	}
	return entries, nil
}
