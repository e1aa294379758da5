package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a sellable catalog item
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Description string             `bson:"description" json:"description" validate:"required"`
	Price       float64            `bson:"price" json:"price" validate:"gt=0"`
	Images      []string           `bson:"image" json:"image"`
	Category    string             `bson:"category" json:"category" validate:"required"`
	SubCategory string             `bson:"subCategory" json:"subCategory"`
	Sizes       []string           `bson:"sizes" json:"sizes"`
	Bestseller  bool               `bson:"bestseller" json:"bestseller"`
	Date        int64              `bson:"date" json:"date"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasSize reports whether size is offered. Products without a size list accept any size.
func (p *Product) HasSize(size string) bool {
	if len(p.Sizes) == 0 {
		return true
	}
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// Thumbnail returns the first image, if any.
func (p *Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
