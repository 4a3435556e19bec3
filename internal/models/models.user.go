package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValidRole reports whether s is a known account role.
func IsValidRole(s string) bool {
	return s == string(RoleAdmin) || s == string(RoleUser)
}

// User is an account document. Password holds the bcrypt hash and is never
// serialized in responses; Status false marks a soft-deleted account.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string             `bson:"name" json:"name"`
	Username   string             `bson:"username" json:"username"`
	Password   string             `bson:"password,omitempty" json:"-"`
	Email      string             `bson:"email" json:"email"`
	Phone      string             `bson:"phone" json:"phone"`
	Role       Role               `bson:"role" json:"role"`
	Status     bool               `bson:"status" json:"status"`
	CreateDate time.Time          `bson:"createDate" json:"createDate"`
	DeleteDate *time.Time         `bson:"deleteDate,omitempty" json:"deleteDate,omitempty"`
}
