package models

import (
	"time"

	"dukaan/identity"
)

type Prescription struct {
	ID        identity.ID `json:"_id" bson:"_id,omitempty"`
	UserID    identity.ID `json:"user_id" bson:"user_id"`
	ShopID    identity.ID `json:"shop_id,omitempty" bson:"shop_id,omitempty"`
	Note      string      `json:"note,omitempty" bson:"note,omitempty"`
	File      string      `json:"file" bson:"file"`
	Thumbnail string      `json:"thumbnail" bson:"thumbnail"`
	Width     int         `json:"width" bson:"width"`
	Height    int         `json:"height" bson:"height"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
