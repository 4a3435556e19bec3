package resources

import (
	"encoding/json"
	"net/http"
	"time"

	"agrosense-backend/internal/errors"
	"agrosense-backend/internal/models"
	"agrosense-backend/internal/service"

	"github.com/gorilla/mux"
)

// SensorHandlers encapsulates the sensor-related HTTP handlers
type SensorHandlers struct {
	service *service.Service
}

type saveReadingRequest struct {
	DeviceID  string            `json:"deviceId"`
	Timestamp string            `json:"timestamp"`
	Sensors   *models.SensorSet `json:"sensors"`
}

type saveReadingResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    *models.SensorReading `json:"data"`
}

// @Summary Store a sensor reading
// @Description Validate, normalize and persist one telemetry message from a field device
// @Tags sensors
// @Accept json
// @Produce json
// @Param reading body saveReadingRequest true "Telemetry payload"
// @Success 201 {object} saveReadingResponse
// @Failure 400 {object} errors.APIError
// @Router /sensor/save [post]
func (h *SensorHandlers) SaveReading(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	var req saveReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if req.DeviceID == "" || req.Sensors == nil {
		respondWithError(w, errors.NewValidationError("missing required parameters", nil).
			WithDetails(map[string]any{"required": []string{"deviceId", "sensors"}}).
			WithRequestID(requestID))
		return
	}

	timestamp := time.Time{}
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			respondWithError(w, errors.NewValidationError("invalid timestamp format", err).
				WithDetails(map[string]string{"expectedFormat": `ISO 8601 (e.g. "2023-07-20T12:00:00Z")`}).
				WithRequestID(requestID))
			return
		}
		timestamp = parsed
	}

	reading := &models.SensorReading{
		DeviceID:  req.DeviceID,
		Timestamp: timestamp,
		Sensors:   *req.Sensors,
	}
	if err := h.service.SaveReading(r.Context(), reading); err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, saveReadingResponse{
		Success: true,
		Message: "sensor reading stored",
		Data:    reading,
	})
}

// @Summary List sensor readings
// @Description Get the 100 most recent readings across all devices
// @Tags sensors
// @Produce json
// @Success 200 {array} models.SensorReading
// @Failure 404 {object} errors.APIError
// @Router /sensor [get]
func (h *SensorHandlers) ListReadings(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	readings, err := h.service.ListReadings(r.Context())
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary List readings by device
// @Description Get the 100 most recent readings for one device
// @Tags sensors
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {array} models.SensorReading
// @Failure 404 {object} errors.APIError
// @Router /sensor/device/{deviceId} [get]
func (h *SensorHandlers) ListReadingsByDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID := reqID(r)

	readings, err := h.service.ListReadingsByDevice(r.Context(), vars["deviceId"])
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}

// @Summary List readings by sensor type
// @Description Get the 100 most recent readings carrying the given sub-reading
// @Tags sensors
// @Produce json
// @Param sensorType query string true "One of ambientHumidity, ambientTemperature, airQuality, voltage, soilMoisture"
// @Success 200 {array} models.SensorReading
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /sensor/readings [get]
func (h *SensorHandlers) ListReadingsBySensorType(w http.ResponseWriter, r *http.Request) {
	requestID := reqID(r)

	sensorType := r.URL.Query().Get("sensorType")
	readings, err := h.service.ListReadingsBySensorType(r.Context(), sensorType)
	if err != nil {
		respondWithError(w, toAPIError(err, requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, readings)
}
