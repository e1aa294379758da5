package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD      PaymentMethod = "COD"
	PaymentStripe   PaymentMethod = "Stripe"
	PaymentRazorpay PaymentMethod = "Razorpay"
)

// OrderItem is a line item with the product's name and price captured at checkout
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size" json:"size"`
	Image     string             `bson:"image" json:"image"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
}

// Order represents a user's order
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	Items          []OrderItem        `bson:"items" json:"items"`
	Amount         float64            `bson:"amount" json:"amount"`
	Subtotal       float64            `bson:"subtotal" json:"subtotal"`
	Shipping       float64            `bson:"shipping" json:"shipping"`
	Tax            float64            `bson:"tax" json:"tax"`
	Address        Address            `bson:"address" json:"address"`
	Status         OrderStatus        `bson:"status" json:"status"`
	PaymentMethod  PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Payment        bool               `bson:"payment" json:"payment"`
	GatewayRef     string             `bson:"gatewayRef,omitempty" json:"gatewayRef,omitempty"`
	TrackingNumber string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Customer is the subset of a user shown next to an order in the admin list.
type Customer struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

// OrderWithCustomer is an order joined with its owner's name and email.
type OrderWithCustomer struct {
	Order `bson:",inline"`
	User  *Customer `bson:"user,omitempty" json:"userId,omitempty"`
}
