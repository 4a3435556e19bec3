package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportType string

const (
	ReportUrgente ReportType = "URGENTE"
	ReportComun   ReportType = "Comun"
)

// IsValidReportType reports whether s is one of the two report categories.
func IsValidReportType(s string) bool {
	return s == string(ReportUrgente) || s == string(ReportComun)
}

type ReportStatus string

const (
	StatusPendiente ReportStatus = "PENDIENTE"
	StatusEnProceso ReportStatus = "EN_PROCESO"
	StatusResuelto  ReportStatus = "RESUELTO"
)

// IsValidReportStatus reports whether s is one of the three report states.
// Any state is reachable from any other state; there is no terminal lock.
func IsValidReportStatus(s string) bool {
	switch ReportStatus(s) {
	case StatusPendiente, StatusEnProceso, StatusResuelto:
		return true
	}
	return false
}

// GeoPoint is a GeoJSON Point: coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// Report is a user-submitted incident report with a geolocation. Reports are
// mutated only through status updates and are never deleted.
type Report struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       string                 `bson:"userId" json:"userId"`
	Timestamp    time.Time              `bson:"timestamp" json:"timestamp"`
	ReportType   ReportType             `bson:"reportType" json:"reportType"`
	Location     GeoPoint               `bson:"location" json:"location"`
	Data         map[string]interface{} `bson:"data" json:"data"`
	Status       ReportStatus           `bson:"status" json:"status"`
	CreateDate   time.Time              `bson:"createDate" json:"createDate"`
	SolutionDate *time.Time             `bson:"solutionDate" json:"solutionDate"`
}
