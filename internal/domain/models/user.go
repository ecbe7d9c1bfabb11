package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an authenticated account. The household pointer is written once the
// user has created or joined a household; a user has at most one household at
// a time.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Email        string              `bson:"email" json:"email"`
	DisplayName  string              `bson:"display_name,omitempty" json:"display_name,omitempty"`
	AuthMethod   string              `bson:"auth_method" json:"auth_method"` // "password" | "google"
	PasswordHash []byte              `bson:"password_hash,omitempty" json:"-"`
	HouseholdID  *primitive.ObjectID `bson:"household_id,omitempty" json:"household_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
