package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginHistory is an append-only record of one authentication attempt,
// successful or not. The internal id is never exposed in responses.
type LoginHistory struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID        string             `bson:"userId" json:"userId"`
	Email         string             `bson:"email" json:"email"`
	IPAddress     string             `bson:"ipAddress" json:"ipAddress"`
	UserAgent     string             `bson:"userAgent" json:"userAgent"`
	LoginAt       time.Time          `bson:"loginAt" json:"loginAt"`
	Success       bool               `bson:"success" json:"success"`
	FailureReason string             `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
}
