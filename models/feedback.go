package models

import (
	"time"

	"dukaan/identity"
)

type Feedback struct {
	ID        identity.ID `json:"_id" bson:"_id,omitempty"`
	UserID    identity.ID `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Name      string      `json:"name,omitempty" bson:"name,omitempty"`
	ShopType  string      `json:"shop_type" bson:"shop_type"`
	Products  string      `json:"products,omitempty" bson:"products,omitempty"`
	NotifyMe  bool        `json:"notify_me" bson:"notify_me"`
	Contact   string      `json:"contact,omitempty" bson:"contact,omitempty"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

type FeedbackFollowup struct {
	ID         identity.ID `json:"_id" bson:"_id,omitempty"`
	FeedbackID identity.ID `json:"feedback_id,omitempty" bson:"feedback_id,omitempty"`
	UserID     identity.ID `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Preference string      `json:"preference" bson:"preference"`
	CreatedAt  time.Time   `json:"created_at" bson:"created_at"`
}
