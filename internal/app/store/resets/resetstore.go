// Package resetstore issues and consumes single-use password reset tokens.
package resetstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/domain/models"
)

// TokenTTL is how long a reset token stays redeemable.
const TokenTTL = 30 * time.Minute

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("password_resets")}
}

// Issue creates a fresh token for the user and returns it. Earlier unused
// tokens for the same user are invalidated so only the latest link works.
func (s *Store) Issue(ctx context.Context, userID primitive.ObjectID) (string, error) {
	if _, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "used": false},
		bson.M{"$set": bson.M{"used": true}},
	); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	pr := models.PasswordReset{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(TokenTTL),
		Used:      false,
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, pr); err != nil {
		return "", err
	}
	return pr.Token, nil
}

// Consume redeems a token and returns the user it belongs to. The
// find-and-update makes double redemption impossible even under concurrent
// requests.
func (s *Store) Consume(ctx context.Context, token string) (primitive.ObjectID, error) {
	var pr models.PasswordReset
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"token":      token,
			"used":       false,
			"expires_at": bson.M{"$gt": time.Now().UTC()},
		},
		bson.M{"$set": bson.M{"used": true}},
	).Decode(&pr)
	if err == mongo.ErrNoDocuments {
		return primitive.NilObjectID, errs.New(errs.NotFound, "reset token is invalid or expired")
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return pr.UserID, nil
}
