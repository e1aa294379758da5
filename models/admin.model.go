package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Admin represents a back-office account
type Admin struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	Password            string             `bson:"password,omitempty" json:"-"`
	Phone               string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role                string             `bson:"role" json:"role"`
	LastLogin           *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	FailedLoginAttempts int                `bson:"failedLoginAttempts" json:"failedLoginAttempts"`
	IsLocked            bool               `bson:"isLocked" json:"isLocked"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
