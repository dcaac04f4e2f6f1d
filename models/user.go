package models

import (
	"time"

	"dukaan/identity"
)

type User struct {
	ID        identity.ID `json:"_id" bson:"_id,omitempty"`
	Mobile    string      `json:"mobile" bson:"mobile"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	LastLogin time.Time   `json:"last_login,omitempty" bson:"last_login,omitempty"`
}
