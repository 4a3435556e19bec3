package service

import (
	"context"
	"errors"
	"time"

	"agrosense-backend/internal/audit"
	apierrors "agrosense-backend/internal/errors"
	"agrosense-backend/internal/models"
	"agrosense-backend/internal/repository"
)

// defaultMaxDistance is the proximity search radius in meters when the
// caller does not supply one.
const defaultMaxDistance = 1000

// CreateReport validates and persists a new incident report. Status always
// starts at PENDIENTE regardless of what the caller sent.
func (s *Service) CreateReport(ctx context.Context, report *models.Report) error {
	if report.UserID == "" {
		return apierrors.NewValidationError("userId is required", nil)
	}
	if report.Data == nil {
		return apierrors.NewValidationError("data payload is required", nil)
	}

	if report.Location.Type == "" {
		report.Location.Type = "Point"
	}
	if report.Location.Type != "Point" {
		return apierrors.NewValidationError("location must be a GeoJSON Point", nil)
	}
	if len(report.Location.Coordinates) != 2 {
		return apierrors.NewValidationError("location coordinates must be [longitude, latitude]", nil)
	}

	if report.ReportType == "" {
		report.ReportType = models.ReportComun
	}
	if !models.IsValidReportType(string(report.ReportType)) {
		return apierrors.NewValidationError("invalid reportType", nil).
			WithDetails(map[string]any{"valid": []models.ReportType{models.ReportUrgente, models.ReportComun}})
	}

	now := time.Now().UTC()
	report.Status = models.StatusPendiente
	report.CreateDate = now
	if report.Timestamp.IsZero() {
		report.Timestamp = now
	}
	report.SolutionDate = nil

	if err := s.reports.Create(ctx, report); err != nil {
		return apierrors.NewDatabaseError("failed to create report", err)
	}
	return nil
}

// ListReports returns all reports matching the optional filters. An empty
// result is a valid answer here, not a not-found condition.
func (s *Service) ListReports(ctx context.Context, filters repository.ReportFilters) ([]models.Report, error) {
	reports, err := s.reports.List(ctx, filters)
	if err != nil {
		return nil, apierrors.NewDatabaseError("failed to list reports", err)
	}
	return reports, nil
}

// ListReportsByUser returns all reports submitted by one user.
func (s *Service) ListReportsByUser(ctx context.Context, userID string) ([]models.Report, error) {
	if userID == "" {
		return nil, apierrors.NewValidationError("userId is required", nil)
	}

	reports, err := s.reports.ListByUser(ctx, userID)
	if err != nil {
		return nil, apierrors.NewDatabaseError("failed to list reports", err)
	}
	if len(reports) == 0 {
		return nil, apierrors.NewNotFoundError("no reports found for this user", nil)
	}
	return reports, nil
}

// ListReportsNear returns reports within maxDistance meters of the given
// point, nearest first. An empty result is a valid answer.
func (s *Service) ListReportsNear(ctx context.Context, longitude, latitude, maxDistance float64, filters repository.ReportFilters) ([]models.Report, error) {
	if maxDistance <= 0 {
		maxDistance = defaultMaxDistance
	}

	reports, err := s.reports.ListNear(ctx, longitude, latitude, maxDistance, filters)
	if err != nil {
		return nil, apierrors.NewDatabaseError("geospatial search failed", err)
	}
	return reports, nil
}

// ListReportsByDateRange returns reports created within [start, end].
func (s *Service) ListReportsByDateRange(ctx context.Context, start, end time.Time, filters repository.ReportFilters) ([]models.Report, error) {
	reports, err := s.reports.ListByDateRange(ctx, start, end, filters)
	if err != nil {
		return nil, apierrors.NewDatabaseError("failed to list reports", err)
	}
	if len(reports) == 0 {
		return nil, apierrors.NewNotFoundError("no reports found in this range", nil)
	}
	return reports, nil
}

// UpdateReportStatus moves a report to the given state. Transitioning to
// RESUELTO stamps solutionDate with the update time; re-resolving refreshes
// it. No ordering between states is enforced.
func (s *Service) UpdateReportStatus(ctx context.Context, id, status string) (*models.Report, error) {
	if !models.IsValidReportStatus(status) {
		return nil, apierrors.NewValidationError("invalid status", nil).
			WithDetails(map[string]any{
				"valid": []models.ReportStatus{models.StatusPendiente, models.StatusEnProceso, models.StatusResuelto},
			})
	}

	var solutionDate *time.Time
	if models.ReportStatus(status) == models.StatusResuelto {
		now := time.Now().UTC()
		solutionDate = &now
	}

	updated, err := s.reports.UpdateStatus(ctx, id, models.ReportStatus(status), solutionDate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewNotFoundError("report not found", err)
		}
		return nil, apierrors.NewDatabaseError("failed to update report", err)
	}

	if updated.Status == models.StatusResuelto {
		s.audit.Emit(audit.EventReportResolved, updated.ID.Hex())
	}
	return updated, nil
}
