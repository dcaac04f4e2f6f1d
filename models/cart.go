package models

import (
	"time"

	"dukaan/identity"
)

// CartLine is one wishlist entry. Variant is a snapshot, not a reference.
type CartLine struct {
	ID         identity.ID `json:"id" bson:"_id,omitempty"`
	UserID     identity.ID `json:"user_id" bson:"user_id"`
	ProductID  identity.ID `json:"product_id" bson:"product_id"`
	ShopID     identity.ID `json:"shop_id" bson:"shop_id"`
	VariantKey string      `json:"-" bson:"variant_key"`
	Quantity   int         `json:"quantity" bson:"quantity"`
	Variant    *Variant    `json:"selected_variant,omitempty" bson:"selected_variant,omitempty"`
	CreatedAt  time.Time   `json:"created_at" bson:"created_at"`
}

// CartItem is a cart line joined with its product, variant overrides applied.
type CartItem struct {
	ID          identity.ID `json:"_id"`
	LineID      identity.ID `json:"line_id"`
	ShopID      identity.ID `json:"shop_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url"`
	Price       float64     `json:"price"`
	BasePrice   float64     `json:"base_price"`
	Quantity    int         `json:"quantity"`
	Variant     *Variant    `json:"selected_variant,omitempty"`
	AddedAt     time.Time   `json:"added_at"`
}
