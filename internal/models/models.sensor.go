package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SensorType string

const (
	SensorAmbientHumidity    SensorType = "ambientHumidity"
	SensorAmbientTemperature SensorType = "ambientTemperature"
	SensorAirQuality         SensorType = "airQuality"
	SensorVoltage            SensorType = "voltage"
	SensorSoilMoisture       SensorType = "soilMoisture"
)

// KnownSensorTypes lists every sensor key a reading may carry, in the order
// the field devices report them.
func KnownSensorTypes() []SensorType {
	return []SensorType{
		SensorAmbientHumidity,
		SensorAmbientTemperature,
		SensorAirQuality,
		SensorVoltage,
		SensorSoilMoisture,
	}
}

// IsKnownSensorType reports whether s names one of the five sensor keys.
func IsKnownSensorType(s string) bool {
	for _, t := range KnownSensorTypes() {
		if string(t) == s {
			return true
		}
	}
	return false
}

// RiskLevel classifies an air quality value (MQ-2, ppm).
type RiskLevel string

const (
	RiskBajo      RiskLevel = "Bajo"
	RiskModerado  RiskLevel = "Moderado"
	RiskAlto      RiskLevel = "Alto"
	RiskPeligroso RiskLevel = "Peligroso"
)

// Measurement is a single numeric sub-reading with its unit. Value is a
// pointer so an explicit zero is distinguishable from an absent reading.
type Measurement struct {
	Value *float64 `bson:"value,omitempty" json:"value,omitempty"`
	Unit  string   `bson:"unit,omitempty" json:"unit,omitempty"`
}

// AirQualityReading carries the raw ppm value plus the derived risk level.
type AirQualityReading struct {
	Value     *float64  `bson:"value,omitempty" json:"value,omitempty"`
	Unit      string    `bson:"unit,omitempty" json:"unit,omitempty"`
	RiskLevel RiskLevel `bson:"riskLevel,omitempty" json:"riskLevel,omitempty"`
}

// SoilMoistureReading carries the raw ADC value (FC-28, 0..4095) and the
// derived moisture percentage.
type SoilMoistureReading struct {
	RawValue   *float64 `bson:"rawValue,omitempty" json:"rawValue,omitempty"`
	Percentage *float64 `bson:"percentage,omitempty" json:"percentage,omitempty"`
	Unit       string   `bson:"unit,omitempty" json:"unit,omitempty"`
}

// SensorSet groups the optional sub-readings of one telemetry message.
type SensorSet struct {
	AmbientHumidity    *Measurement         `bson:"ambientHumidity,omitempty" json:"ambientHumidity,omitempty"`
	AmbientTemperature *Measurement         `bson:"ambientTemperature,omitempty" json:"ambientTemperature,omitempty"`
	AirQuality         *AirQualityReading   `bson:"airQuality,omitempty" json:"airQuality,omitempty"`
	Voltage            *Measurement         `bson:"voltage,omitempty" json:"voltage,omitempty"`
	SoilMoisture       *SoilMoistureReading `bson:"soilMoisture,omitempty" json:"soilMoisture,omitempty"`
}

// SensorReading is one persisted telemetry document. Readings are written
// once at ingestion and never mutated.
type SensorReading struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DeviceID  string             `bson:"deviceId" json:"deviceId"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Sensors   SensorSet          `bson:"sensors" json:"sensors"`
}
