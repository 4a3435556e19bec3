package resources

import (
	"encoding/json"
	"net/http"
	"time"

	"agrosense-backend/internal/errors"
	"agrosense-backend/internal/models"
	"agrosense-backend/internal/repository"
	"agrosense-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
)

// ReportHandlers encapsulates the report-related HTTP handlers
type ReportHandlers struct {
	service *service.Service
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

type nearQuery struct {
	Longitude   *float64 `schema:"longitude"`
	Latitude    *float64 `schema:"latitude"`
	MaxDistance float64  `schema:"maxDistance"`
	Status      string   `schema:"status"`
	ReportType  string   `schema:"reportType"`
}

type dateRangeQuery struct {
	StartDate  string `schema:"startDate"`
	EndDate    string `schema:"endDate"`
	Status     string `schema:"status"`
	ReportType string `schema:"reportType"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// @Summary Create a report
// @Description Create a new geolocated incident report; status starts at PENDIENTE
// @Tags reports
// @Accept json
// @Produce json
// @Param report body models.Report true "Report details"
// @Success 201 {object} models.Report
// @Failure 400 {object} errors.APIError
// @Router /reports [post]
func (h *ReportHandlers) CreateReport(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	var report models.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.service.CreateReport(r.Context(), &report); err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, report)
}

// @Summary List reports
// @Description Get all reports, optionally filtered by status and reportType
// @Tags reports
// @Produce json
// @Param status query string false "PENDIENTE, EN_PROCESO or RESUELTO"
// @Param reportType query string false "URGENTE or Comun"
// @Success 200 {array} models.Report
// @Router /reports [get]
func (h *ReportHandlers) ListReports(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)
	query := r.URL.Query()

	reports, err := h.service.ListReports(r.Context(), repository.ReportFilters{
		Status:     models.ReportStatus(query.Get("status")),
		ReportType: models.ReportType(query.Get("reportType")),
	})
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, reports)
}

// @Summary List reports by user
// @Description Get all reports submitted by one user
// @Tags reports
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} models.Report
// @Failure 404 {object} errors.APIError
// @Router /reports/user/{userId} [get]
func (h *ReportHandlers) ListReportsByUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := reqID(r)

	reports, err := h.service.ListReportsByUser(r.Context(), vars["userId"])
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, reports)
}

// @Summary List reports near a location
// @Description Get reports within maxDistance meters of a point, nearest first
// @Tags reports
// @Produce json
// @Param longitude query number true "Longitude"
// @Param latitude query number true "Latitude"
// @Param maxDistance query number false "Radius in meters (default 1000)"
// @Param status query string false "Status filter"
// @Param reportType query string false "Report type filter"
// @Success 200 {array} models.Report
// @Failure 400 {object} errors.APIError
// @Router /reports/near [get]
func (h *ReportHandlers) ListReportsNear(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	var query nearQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}
	if query.Longitude == nil || query.Latitude == nil {
		respondWithError(w, errors.NewValidationError("longitude and latitude are required", nil).WithRequestID(requestID))
		return
	}

	reports, err := h.service.ListReportsNear(r.Context(),
		*query.Longitude, *query.Latitude, query.MaxDistance,
		repository.ReportFilters{
			Status:     models.ReportStatus(query.Status),
			ReportType: models.ReportType(query.ReportType),
		})
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, reports)
}

// @Summary List reports by date range
// @Description Get reports created within [startDate, endDate]
// @Tags reports
// @Produce json
// @Param startDate query string true "Start date (RFC3339 or YYYY-MM-DD)"
// @Param endDate query string true "End date (RFC3339 or YYYY-MM-DD)"
// @Param status query string false "Status filter"
// @Param reportType query string false "Report type filter"
// @Success 200 {array} models.Report
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /reports/date [get]
func (h *ReportHandlers) ListReportsByDateRange(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	var query dateRangeQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}
	if query.StartDate == "" || query.EndDate == "" {
		respondWithError(w, errors.NewValidationError("startDate and endDate are required", nil).WithRequestID(requestID))
		return
	}

	start, err := parseDate(query.StartDate)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid startDate", err).WithRequestID(requestID))
		return
	}
	end, err := parseDate(query.EndDate)
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid endDate", err).WithRequestID(requestID))
		return
	}

	reports, err := h.service.ListReportsByDateRange(r.Context(), start, end,
		repository.ReportFilters{
			Status:     models.ReportStatus(query.Status),
			ReportType: models.ReportType(query.ReportType),
		})
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, reports)
}

// @Summary Update report status
// @Description Move a report to PENDIENTE, EN_PROCESO or RESUELTO; resolving stamps solutionDate
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param status body updateStatusRequest true "New status"
// @Success 200 {object} models.Report
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /reports/{id} [patch]
func (h *ReportHandlers) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := reqID(r)

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	report, err := h.service.UpdateReportStatus(r.Context(), vars["id"], req.Status)
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// parseDate accepts a full RFC3339 instant or a bare calendar date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
