package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit event categories.
const (
	AuditCategoryAuth      = "auth"
	AuditCategoryHousehold = "household"
)

// AuditEvent records an auth or household action for the audit trail.
type AuditEvent struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Category  string              `bson:"category" json:"category"` // auth | household
	EventType string              `bson:"event_type" json:"event_type"`
	Success   bool                `bson:"success" json:"success"`
	UserID    *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	IP        string              `bson:"ip,omitempty" json:"ip,omitempty"`
	Details   map[string]string   `bson:"details,omitempty" json:"details,omitempty"`
	Failure   string              `bson:"failure,omitempty" json:"failure,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}

// PasswordReset is a single-use password reset token. Delivery is a
// collaborator concern; this service only issues and consumes tokens.
type PasswordReset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Token     string             `bson:"token" json:"-"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	Used      bool               `bson:"used" json:"used"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
