package userstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/app/system/normalize"
	"github.com/exodologio/exodologio/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.New(errs.NotFound, "user not found")
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.New(errs.NotFound, "user not found")
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields. The unique index on
// email turns races into a clean EmailTaken error.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.DisplayName = normalize.Name(u.DisplayName)
	u.AuthMethod = normalize.AuthMethod(u.AuthMethod)

	switch u.AuthMethod {
	case "password", "google":
	default:
		return models.User{}, errs.New(errs.ValidationFailed, `auth method must be "password" or "google"`)
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, errs.New(errs.EmailTaken, "an account with this email already exists")
		}
		return models.User{}, err
	}
	return u, nil
}

// SetHousehold points the user at a household, or clears the pointer when
// householdID is nil.
func (s *Store) SetHousehold(ctx context.Context, userID primitive.ObjectID, householdID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{
		"household_id": householdID,
		"updated_at":   time.Now().UTC(),
	}}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.New(errs.NotFound, "user not found")
	}
	return nil
}

// SetPasswordHash replaces the stored bcrypt hash.
func (s *Store) SetPasswordHash(ctx context.Context, userID primitive.ObjectID, hash []byte) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.New(errs.NotFound, "user not found")
	}
	return nil
}

// UpdateDisplayName renames the user.
func (s *Store) UpdateDisplayName(ctx context.Context, userID primitive.ObjectID, name string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"display_name": normalize.Name(name), "updated_at": time.Now().UTC()}},
	)
	return err
}

// ListByHousehold returns every user whose pointer targets householdID.
// The reconciliation worker uses it to cross-check memberships.
func (s *Store) ListByHousehold(ctx context.Context, householdID primitive.ObjectID) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"household_id": householdID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
