// Package settingsstore provides access to the household_settings collection.
// Each household has exactly one settings document.
package settingsstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/exodologio/exodologio/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

// New creates a settings store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("household_settings")}
}

// Get returns the settings for a household. A missing document yields the
// seeded defaults without writing anything.
func (s *Store) Get(ctx context.Context, householdID primitive.ObjectID) (models.HouseholdSettings, error) {
	var settings models.HouseholdSettings
	err := s.c.FindOne(ctx, bson.M{"household_id": householdID}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return models.HouseholdSettings{
			HouseholdID: householdID,
			BankWallets: append([]string(nil), models.DefaultBankWallets...),
		}, nil
	}
	if err != nil {
		return models.HouseholdSettings{}, err
	}
	return settings, nil
}

// Seed writes the default settings document for a fresh household. Upserts
// so a retried bootstrap does not duplicate or clobber concurrent edits.
func (s *Store) Seed(ctx context.Context, householdID, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":          primitive.NewObjectID(),
			"household_id": householdID,
			"bank_wallets": models.DefaultBankWallets,
			"updated_at":   now,
			"updated_by":   userID,
		},
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"household_id": householdID}, update,
		options.Update().SetUpsert(true))
	return err
}

// AddBankWallet appends a custom bank/wallet name if it is not already
// present. $addToSet keeps the read-modify-write race-free even outside a
// session transaction.
func (s *Store) AddBankWallet(ctx context.Context, householdID, userID primitive.ObjectID, name string) error {
	update := bson.M{
		"$addToSet": bson.M{"bank_wallets": name},
		"$set": bson.M{
			"updated_at": time.Now().UTC(),
			"updated_by": userID,
		},
		"$setOnInsert": bson.M{
			"_id":          primitive.NewObjectID(),
			"household_id": householdID,
		},
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"household_id": householdID}, update,
		options.Update().SetUpsert(true))
	return err
}

// Delete removes the settings document. Used when a household is torn down.
func (s *Store) Delete(ctx context.Context, householdID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"household_id": householdID})
	return err
}
