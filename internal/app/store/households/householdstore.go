// Package householdstore owns the households, invite_codes, and memberships
// collections and the multi-document flows that span them: bootstrap of a new
// household, joining via invite code, and invite rotation.
package householdstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	settingsstore "github.com/exodologio/exodologio/internal/app/store/settings"
	userstore "github.com/exodologio/exodologio/internal/app/store/users"
	"github.com/exodologio/exodologio/internal/app/system/errs"
	"github.com/exodologio/exodologio/internal/app/system/invite"
	"github.com/exodologio/exodologio/internal/app/system/txn"
	"github.com/exodologio/exodologio/internal/domain/models"
)

// maxCodeProbes bounds how many candidate codes bootstrap checks for
// availability. Each probe carries a fresh random suffix, so repeated
// collisions are vanishingly rare.
const maxCodeProbes = 5

type Store struct {
	households *mongo.Collection
	invites    *mongo.Collection
	members    *mongo.Collection

	users    *userstore.Store
	settings *settingsstore.Store

	client *mongo.Client
	log    *zap.Logger
}

func New(db *mongo.Database, client *mongo.Client, users *userstore.Store, settings *settingsstore.Store, log *zap.Logger) *Store {
	return &Store{
		households: db.Collection("households"),
		invites:    db.Collection("invite_codes"),
		members:    db.Collection("memberships"),
		users:      users,
		settings:   settings,
		client:     client,
		log:        log,
	}
}

// GetByID loads a household.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Household, error) {
	var h models.Household
	if err := s.households.FindOne(ctx, bson.M{"_id": id}).Decode(&h); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.New(errs.NotFound, "household not found")
		}
		return nil, err
	}
	return &h, nil
}

// LookupInvite resolves a normalized code to its household ID.
func (s *Store) LookupInvite(ctx context.Context, code string) (primitive.ObjectID, error) {
	var doc models.InviteCode
	if err := s.invites.FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, errs.New(errs.NotFound, "no household uses this invite code")
		}
		return primitive.NilObjectID, err
	}
	return doc.HouseholdID, nil
}

// CodeTaken reports whether a normalized code is already mapped.
func (s *Store) CodeTaken(ctx context.Context, code string) (bool, error) {
	err := s.invites.FindOne(ctx, bson.M{"_id": code}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// EnsureMembership records that user belongs to household. Idempotent: a
// re-join updates the display name instead of failing on the unique index.
func (s *Store) EnsureMembership(ctx context.Context, householdID, userID primitive.ObjectID, displayName string) error {
	update := bson.M{
		"$set": bson.M{"display_name": displayName},
		"$setOnInsert": bson.M{
			"_id":          primitive.NewObjectID(),
			"household_id": householdID,
			"user_id":      userID,
			"joined_at":    time.Now().UTC(),
		},
	}
	_, err := s.members.UpdateOne(ctx,
		bson.M{"household_id": householdID, "user_id": userID},
		update, options.Update().SetUpsert(true))
	return err
}

// Members lists a household's memberships, oldest joiner first.
func (s *Store) Members(ctx context.Context, householdID primitive.ObjectID) ([]models.Membership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}})
	cur, err := s.members.Find(ctx, bson.M{"household_id": householdID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Membership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsMember reports whether user belongs to household.
func (s *Store) IsMember(ctx context.Context, householdID, userID primitive.ObjectID) (bool, error) {
	err := s.members.FindOne(ctx, bson.M{"household_id": householdID, "user_id": userID}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Create bootstraps a household for user. The steps run in order without a
// surrounding transaction; every step is individually retryable and the
// reconciliation worker repairs a bootstrap that dies midway. The invite
// mapping goes in last so a partially built household never receives
// joiners.
func (s *Store) Create(ctx context.Context, user *models.User, displayName, proposedBase string) (*models.Household, error) {
	code, err := s.claimFreeCode(ctx, proposedBase)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	h := models.Household{
		ID:              primitive.NewObjectID(),
		CreatedBy:       user.ID,
		CreatedAt:       now,
		InviteCode:      code,
		InviteUpdatedAt: now,
		InviteUpdatedBy: user.ID,
	}
	if _, err := s.households.InsertOne(ctx, h); err != nil {
		return nil, err
	}
	if err := s.EnsureMembership(ctx, h.ID, user.ID, displayName); err != nil {
		return nil, err
	}
	if err := s.users.SetHousehold(ctx, user.ID, &h.ID); err != nil {
		return nil, err
	}
	if err := s.settings.Seed(ctx, h.ID, user.ID); err != nil {
		return nil, err
	}

	mapping := models.InviteCode{
		Code:        code,
		HouseholdID: h.ID,
		CreatedBy:   user.ID,
		CreatedAt:   now,
	}
	if _, err := s.invites.InsertOne(ctx, mapping); err != nil {
		if wafflemongo.IsDup(err) {
			// Lost a race for the code after probing. The household exists
			// without a mapping; the worker will assign it a fresh one.
			s.log.Warn("invite code raced during bootstrap",
				zap.String("household_id", h.ID.Hex()),
				zap.String("code", code))
			return nil, errs.New(errs.CodeTaken, "invite code is already in use")
		}
		return nil, err
	}
	return &h, nil
}

// claimFreeCode probes candidate codes until one is unmapped. Every probe
// re-proposes from the caller's base with a fresh random suffix; the random
// fallback only steps in when a proposal fails validation. When all probes
// collide the last candidate is returned anyway and the unique mapping
// insert stays the final arbiter.
func (s *Store) claimFreeCode(ctx context.Context, proposedBase string) (string, error) {
	var candidate string
	for i := 0; i < maxCodeProbes; i++ {
		candidate = invite.ProposeCode(proposedBase)
		if !invite.IsValidCode(candidate) {
			candidate = invite.FallbackCode()
		}
		taken, err := s.CodeTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return candidate, nil
}

// Join adds user to the household behind rawCode. The code is normalized and
// validated before lookup. Membership creation is idempotent, and the user
// pointer is set even when the membership write hits a transient error on a
// previous attempt.
func (s *Store) Join(ctx context.Context, user *models.User, displayName, rawCode string) (*models.Household, error) {
	code := invite.NormalizeCode(rawCode)
	if !invite.IsValidCode(code) {
		return nil, errs.New(errs.InvalidCode, "invite code has an invalid format")
	}

	householdID, err := s.LookupInvite(ctx, code)
	if err != nil {
		return nil, err
	}
	h, err := s.GetByID(ctx, householdID)
	if err != nil {
		return nil, err
	}

	if err := s.EnsureMembership(ctx, h.ID, user.ID, displayName); err != nil {
		s.log.Warn("membership write failed during join; continuing",
			zap.String("household_id", h.ID.Hex()),
			zap.String("user_id", user.ID.Hex()),
			zap.Error(err))
	}
	if err := s.users.SetHousehold(ctx, user.ID, &h.ID); err != nil {
		return nil, err
	}
	return h, nil
}

// RotateInvite atomically replaces the household's invite code: the new
// mapping is written, the household document updated, and the old mapping
// deleted, all in one transaction. A code mapped to another household fails
// the rotation and the old code keeps working; a mapping that already points
// at this household is simply refreshed.
func (s *Store) RotateInvite(ctx context.Context, householdID, userID primitive.ObjectID, rawCode string) (*models.Household, error) {
	code := invite.NormalizeCode(rawCode)
	if !invite.IsValidCode(code) {
		return nil, errs.New(errs.InvalidCode, "invite code has an invalid format")
	}

	now := time.Now().UTC()
	var h *models.Household
	err := txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		// The household read happens inside the transaction: a rotation that
		// commits concurrently would otherwise leave us deleting a stale old
		// code while its replacement mapping survives.
		var err error
		h, err = s.GetByID(ctx, householdID)
		if err != nil {
			return err
		}
		if h.InviteCode == code {
			return nil
		}
		oldCode := h.InviteCode

		owner, err := s.LookupInvite(ctx, code)
		if err != nil && errs.KindOf(err) != errs.NotFound {
			return err
		}
		if err == nil && owner != householdID {
			return errs.New(errs.CodeTaken, "invite code is already in use")
		}

		// Upsert rather than insert: the code may already map to this same
		// household (a leftover from a repair), which is ours to overwrite.
		_, err = s.invites.UpdateOne(ctx,
			bson.M{"_id": code},
			bson.M{"$set": bson.M{
				"household_id": householdID,
				"created_by":   userID,
				"created_at":   now,
			}},
			options.Update().SetUpsert(true))
		if err != nil {
			if wafflemongo.IsDup(err) {
				return errs.New(errs.CodeTaken, "invite code is already in use")
			}
			return err
		}

		update := bson.M{"$set": bson.M{
			"invite_code":       code,
			"invite_updated_at": now,
			"invite_updated_by": userID,
		}}
		if _, err := s.households.UpdateOne(ctx, bson.M{"_id": householdID}, update); err != nil {
			return err
		}

		if oldCode != "" {
			if _, err := s.invites.DeleteOne(ctx, bson.M{"_id": oldCode}); err != nil {
				return err
			}
		}
		h.InviteCode = code
		h.InviteUpdatedAt = now
		h.InviteUpdatedBy = userID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ListAll streams every household. Used by the reconciliation worker.
func (s *Store) ListAll(ctx context.Context) ([]models.Household, error) {
	cur, err := s.households.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Household
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RepairInvite gives a household whose mapping is missing a fresh random
// code. Called by the reconciliation worker only.
func (s *Store) RepairInvite(ctx context.Context, h models.Household) (string, error) {
	code, err := s.claimFreeCode(ctx, "")
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()

	err = txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		mapping := models.InviteCode{
			Code:        code,
			HouseholdID: h.ID,
			CreatedBy:   h.CreatedBy,
			CreatedAt:   now,
		}
		if _, err := s.invites.InsertOne(ctx, mapping); err != nil {
			return err
		}
		update := bson.M{"$set": bson.M{
			"invite_code":       code,
			"invite_updated_at": now,
		}}
		_, err := s.households.UpdateOne(ctx, bson.M{"_id": h.ID}, update)
		return err
	})
	if err != nil {
		return "", err
	}
	return code, nil
}
