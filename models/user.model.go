package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a user's address for delivery
type Address struct {
	FirstName string `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Street    string `bson:"street" json:"street" validate:"required"`
	City      string `bson:"city" json:"city" validate:"required"`
	State     string `bson:"state" json:"state" validate:"required"`
	Zip       string `bson:"zip" json:"zip" validate:"required"`
	Country   string `bson:"country" json:"country" validate:"required"`
}

// Complete reports whether all five delivery fields are filled in.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.Zip != "" && a.Country != ""
}

// SameAs compares the delivery fields only; name fields are ignored.
func (a Address) SameAs(other Address) bool {
	return a.Street == other.Street &&
		a.City == other.City &&
		a.State == other.State &&
		a.Zip == other.Zip &&
		a.Country == other.Country
}

// User represents a customer in the system
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password,omitempty" json:"-"`
	Phone      string             `bson:"phone" json:"phone"`
	IsVerified bool               `bson:"isVerified" json:"isVerified"`
	Address    []Address          `bson:"address" json:"address"`
	CartData   CartData           `bson:"cartData" json:"cartData,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasAddress reports whether an identical delivery address is already saved.
func (u *User) HasAddress(addr Address) bool {
	for _, a := range u.Address {
		if a.SameAs(addr) {
			return true
		}
	}
	return false
}
