package models

import (
	"time"

	"dukaan/identity"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
)

type OrderLine struct {
	ProductID   identity.ID `json:"product_id" bson:"product_id"`
	ShopID      identity.ID `json:"shop_id" bson:"shop_id"`
	ProductName string      `json:"name" bson:"name"`
	Quantity    int         `json:"quantity" bson:"quantity"`
	UnitPrice   float64     `json:"price" bson:"price"`
	Variant     *Variant    `json:"variant,omitempty" bson:"variant,omitempty"`
}

// Order is append-only; Status is the only field that changes after insert.
type Order struct {
	ID          identity.ID `json:"_id" bson:"_id,omitempty"`
	UserID      identity.ID `json:"user_id" bson:"user_id"`
	ShopID      identity.ID `json:"shop_id,omitempty" bson:"shop_id,omitempty"`
	Items       []OrderLine `json:"items" bson:"items"`
	TotalAmount float64     `json:"total_amount" bson:"total_amount"`
	Status      OrderStatus `json:"status" bson:"status"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
}
