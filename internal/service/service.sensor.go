package service

import (
	"context"
	"math"
	"time"

	apierrors "agrosense-backend/internal/errors"
	"agrosense-backend/internal/models"
)

// maxListResults caps every read query at the 100 most recent documents.
const maxListResults = 100

// soilMoistureRawMax is the upper bound of the FC-28 ADC range.
const soilMoistureRawMax = 4095

// Default units reported by the field devices.
const (
	unitPercent = "%"
	unitCelsius = "Celsius"
	unitPPM     = "ppm"
	unitVolt    = "V"
)

// FieldError describes one invalid field in a telemetry payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SoilMoisturePercentage maps the raw ADC value (0 very wet .. 4095 very
// dry) onto a 0-100 moisture percentage.
func SoilMoisturePercentage(raw float64) float64 {
	return 100 - math.Round(raw/soilMoistureRawMax*100)
}

// AirQualityRiskLevel buckets an MQ-2 ppm value; ties resolve toward the
// lower bucket.
func AirQualityRiskLevel(value float64) models.RiskLevel {
	switch {
	case value <= 50:
		return models.RiskBajo
	case value <= 100:
		return models.RiskModerado
	case value <= 200:
		return models.RiskAlto
	default:
		return models.RiskPeligroso
	}
}

// SaveReading validates and normalizes one telemetry message, derives the
// computed fields and persists it. The reading's ID is set on success.
func (s *Service) SaveReading(ctx context.Context, reading *models.SensorReading) error {
	sensors := &reading.Sensors

	// Voltage alone does not count as a sensor reading.
	if sensors.AmbientHumidity == nil && sensors.AmbientTemperature == nil &&
		sensors.AirQuality == nil && sensors.SoilMoisture == nil {
		return apierrors.NewValidationError("invalid sensors structure", nil).
			WithDetails(map[string]string{
				"expected": "at least one of ambientHumidity, ambientTemperature, airQuality, soilMoisture",
			})
	}

	if fieldErrs := validateSensorRanges(sensors); len(fieldErrs) > 0 {
		return apierrors.NewValidationError("sensor validation error", nil).WithDetails(fieldErrs)
	}

	normalizeSensors(sensors)

	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}

	if err := s.readings.Insert(ctx, reading); err != nil {
		return apierrors.NewDatabaseError("failed to store sensor reading", err)
	}
	return nil
}

// ListReadings returns the most recent readings across all devices.
func (s *Service) ListReadings(ctx context.Context) ([]models.SensorReading, error) {
	readings, err := s.readings.List(ctx, maxListResults)
	if err != nil {
		return nil, apierrors.NewDatabaseError("failed to list sensor readings", err)
	}
	if len(readings) == 0 {
		return nil, apierrors.NewNotFoundError("no sensor readings found", nil)
	}
	return readings, nil
}

// ListReadingsByDevice returns the most recent readings for one device.
func (s *Service) ListReadingsByDevice(ctx context.Context, deviceID string) ([]models.SensorReading, error) {
	if deviceID == "" {
		return nil, apierrors.NewValidationError("deviceId is required", nil)
	}

	readings, err := s.readings.ListByDevice(ctx, deviceID, maxListResults)
	if err != nil {
		return nil, apierrors.NewDatabaseError("failed to list sensor readings", err)
	}
	if len(readings) == 0 {
		return nil, apierrors.NewNotFoundError("no readings found for the specified device", nil)
	}
	return readings, nil
}

// ListReadingsBySensorType returns readings carrying the given sub-reading,
// trimmed to deviceId, timestamp and that sub-object.
func (s *Service) ListReadingsBySensorType(ctx context.Context, sensorType string) ([]models.SensorReading, error) {
	if !models.IsKnownSensorType(sensorType) {
		return nil, apierrors.NewValidationError("invalid sensorType parameter", nil).
			WithDetails(map[string]any{"validSensors": models.KnownSensorTypes()})
	}

	readings, err := s.readings.ListBySensorType(ctx, models.SensorType(sensorType), maxListResults)
	if err != nil {
		return nil, apierrors.NewDatabaseError("failed to list sensor readings", err)
	}
	if len(readings) == 0 {
		return nil, apierrors.NewNotFoundError("no readings found for the specified sensor", nil)
	}
	return readings, nil
}

// validateSensorRanges enumerates every sub-reading outside its hardware
// range so the caller can report all of them at once.
func validateSensorRanges(sensors *models.SensorSet) []FieldError {
	var errs []FieldError

	if h := sensors.AmbientHumidity; h != nil && h.Value != nil {
		if *h.Value < 0 || *h.Value > 100 {
			errs = append(errs, FieldError{"sensors.ambientHumidity.value", "must be between 0 and 100"})
		}
	}
	if t := sensors.AmbientTemperature; t != nil && t.Value != nil {
		if *t.Value < -40 || *t.Value > 80 {
			errs = append(errs, FieldError{"sensors.ambientTemperature.value", "must be between -40 and 80"})
		}
	}
	if sm := sensors.SoilMoisture; sm != nil {
		if sm.RawValue != nil && (*sm.RawValue < 0 || *sm.RawValue > soilMoistureRawMax) {
			errs = append(errs, FieldError{"sensors.soilMoisture.rawValue", "must be between 0 and 4095"})
		}
		if sm.Percentage != nil && (*sm.Percentage < 0 || *sm.Percentage > 100) {
			errs = append(errs, FieldError{"sensors.soilMoisture.percentage", "must be between 0 and 100"})
		}
	}
	return errs
}

// normalizeSensors fills unit defaults and the derived fields.
func normalizeSensors(sensors *models.SensorSet) {
	if h := sensors.AmbientHumidity; h != nil && h.Unit == "" {
		h.Unit = unitPercent
	}
	if t := sensors.AmbientTemperature; t != nil && t.Unit == "" {
		t.Unit = unitCelsius
	}
	if v := sensors.Voltage; v != nil && v.Unit == "" {
		v.Unit = unitVolt
	}

	if aq := sensors.AirQuality; aq != nil {
		if aq.Unit == "" {
			aq.Unit = unitPPM
		}
		if aq.Value != nil {
			aq.RiskLevel = AirQualityRiskLevel(*aq.Value)
		}
	}

	if sm := sensors.SoilMoisture; sm != nil {
		if sm.Unit == "" {
			sm.Unit = unitPercent
		}
		if sm.RawValue != nil && sm.Percentage == nil {
			pct := SoilMoisturePercentage(*sm.RawValue)
			sm.Percentage = &pct
		}
	}
}
