package models

import (
	"time"

	"dukaan/identity"
)

type Review struct {
	ID        identity.ID `json:"_id" bson:"_id,omitempty"`
	ShopID    identity.ID `json:"shop_id" bson:"shop_id"`
	UserID    identity.ID `json:"user_id" bson:"user_id"`
	Rating    int         `json:"rating" bson:"rating"`
	Comment   string      `json:"comment" bson:"comment"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
