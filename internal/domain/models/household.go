package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Household is the shared financial unit multiple users belong to. The invite
// code may be rotated later; the household ID never changes. The recorded
// invite code and the invite_codes mapping must always agree (rotation is a
// single transaction).
type Household struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	// InviteCode is always stored normalized (lowercase slug).
	InviteCode      string             `bson:"invite_code" json:"invite_code"`
	InviteUpdatedAt time.Time          `bson:"invite_updated_at" json:"invite_updated_at"`
	InviteUpdatedBy primitive.ObjectID `bson:"invite_updated_by" json:"invite_updated_by"`
}

// InviteCode is the reverse lookup record: the document ID is the normalized
// code itself, so joining by code is a single keyed read. Exactly one mapping
// may exist per code; a household rotation deletes the old mapping.
type InviteCode struct {
	Code        string             `bson:"_id" json:"code"`
	HouseholdID primitive.ObjectID `bson:"household_id" json:"household_id"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Membership asserts that a user belongs to a household. One document per
// (household, user); never deleted.
type Membership struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HouseholdID primitive.ObjectID `bson:"household_id" json:"household_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	DisplayName string             `bson:"display_name,omitempty" json:"display_name,omitempty"`
	JoinedAt    time.Time          `bson:"joined_at" json:"joined_at"`
}

// HouseholdSettings holds per-household options users can extend. The
// bank/wallet list has set semantics: duplicates are dropped on insert and
// entries are never removed.
type HouseholdSettings struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HouseholdID primitive.ObjectID `bson:"household_id" json:"household_id"`
	BankWallets []string           `bson:"bank_wallets" json:"bank_wallets"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	UpdatedBy   primitive.ObjectID `bson:"updated_by" json:"updated_by"`
}
