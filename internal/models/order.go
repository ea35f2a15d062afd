package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderNotProcessed OrderStatus = "Not Processed"
	OrderProcessing   OrderStatus = "Processing"
	OrderDispatched   OrderStatus = "Dispatched"
	OrderCancelled    OrderStatus = "Cancelled"
	OrderDelivered    OrderStatus = "Delivered"
)

// OrderStatuses lists every accepted status.
var OrderStatuses = []OrderStatus{OrderNotProcessed, OrderProcessing, OrderDispatched, OrderCancelled, OrderDelivered}

// PaymentMethod is how the customer pays. Values are stored uppercase.
type PaymentMethod string

const (
	PaymentCOD        PaymentMethod = "COD"
	PaymentUPI        PaymentMethod = "UPI"
	PaymentCard       PaymentMethod = "CARD"
	PaymentNetBanking PaymentMethod = "NET BANKING"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []PaymentMethod{PaymentCOD, PaymentUPI, PaymentCard, PaymentNetBanking}

// OrderItem is one purchased line. Price is the unit price at order time.
type OrderItem struct {
	ProductID     primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	Price         float64            `bson:"price" json:"price"`
	Size          string             `bson:"size,omitempty" json:"size,omitempty"`
	Color         string             `bson:"color,omitempty" json:"color,omitempty"`
	SelectedIndex *int               `bson:"selectedIndex,omitempty" json:"selectedIndex,omitempty"`
}

type ShippingAddress struct {
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	PinCode string `bson:"pinCode" json:"pinCode"`
	Country string `bson:"country" json:"country"`
}

// Order is the document stored in the orders collection.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"orderItems" json:"orderItems"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	Tax             float64            `bson:"tax" json:"tax"`
	ShippingCharges float64            `bson:"shippingCharges" json:"shippingCharges"`
	Discount        float64            `bson:"discount" json:"discount"`
	Total           float64            `bson:"total" json:"total"`
	PaymentMethod   PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Status          OrderStatus        `bson:"status" json:"status"`
	DeliveredAt     *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
