package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/exodologio/exodologio/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a password-auth user and returns it.
func (f *Fixtures) CreateUser(ctx context.Context, email, name string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:          primitive.NewObjectID(),
		Email:       email,
		DisplayName: name,
		AuthMethod:  "password",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("create test user: %v", err)
	}
	return u
}

// CreateHousehold inserts a household together with its invite mapping and
// points the creator's user document at it.
func (f *Fixtures) CreateHousehold(ctx context.Context, creator models.User, code string) models.Household {
	f.t.Helper()

	now := time.Now().UTC()
	h := models.Household{
		ID:              primitive.NewObjectID(),
		CreatedBy:       creator.ID,
		CreatedAt:       now,
		InviteCode:      code,
		InviteUpdatedAt: now,
		InviteUpdatedBy: creator.ID,
	}
	if _, err := f.db.Collection("households").InsertOne(ctx, h); err != nil {
		f.t.Fatalf("create test household: %v", err)
	}
	mapping := models.InviteCode{
		Code:        code,
		HouseholdID: h.ID,
		CreatedBy:   creator.ID,
		CreatedAt:   now,
	}
	if _, err := f.db.Collection("invite_codes").InsertOne(ctx, mapping); err != nil {
		f.t.Fatalf("create test invite mapping: %v", err)
	}
	if _, err := f.db.Collection("users").UpdateOne(ctx,
		map[string]interface{}{"_id": creator.ID},
		map[string]interface{}{"$set": map[string]interface{}{"household_id": h.ID}},
	); err != nil {
		f.t.Fatalf("point test user at household: %v", err)
	}
	return h
}

// CreateMembership links a user to a household.
func (f *Fixtures) CreateMembership(ctx context.Context, householdID, userID primitive.ObjectID, displayName string) models.Membership {
	f.t.Helper()

	m := models.Membership{
		ID:          primitive.NewObjectID(),
		HouseholdID: householdID,
		UserID:      userID,
		DisplayName: displayName,
		JoinedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("create test membership: %v", err)
	}
	return m
}

// CreateTransaction inserts a minimal transaction of the given type.
func (f *Fixtures) CreateTransaction(ctx context.Context, householdID, userID primitive.ObjectID, date, typ string, amount float64) models.Transaction {
	f.t.Helper()

	now := time.Now().UTC()
	tx := models.Transaction{
		ID:          primitive.NewObjectID(),
		HouseholdID: householdID,
		Date:        date,
		Month:       models.MonthOf(date),
		Type:        typ,
		Amount:      amount,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if typ == models.TypeIncome {
		tx.IncomeSource = models.IncomeSourceSalary
		tx.IncomeReceiptMethod = "Μετρητά"
	} else {
		tx.ExpenseCategory = models.ExpenseCategories[0]
	}
	if _, err := f.db.Collection("transactions").InsertOne(ctx, tx); err != nil {
		f.t.Fatalf("create test transaction: %v", err)
	}
	return tx
}
